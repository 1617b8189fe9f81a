package utils_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/websync/internal/utils"
)

type flushRecordingWriter struct {
	buffer     bytes.Buffer
	flushCount int
}

func (writer *flushRecordingWriter) Write(data []byte) (int, error) {
	return writer.buffer.Write(data)
}

func (writer *flushRecordingWriter) Flush() error {
	writer.flushCount++
	return nil
}

func TestFlushingWriterFlushesAfterEachWrite(testInstance *testing.T) {
	recordingWriter := &flushRecordingWriter{}
	flushingWriter := utils.NewFlushingWriter(recordingWriter)

	firstCount, firstError := flushingWriter.Write([]byte("release "))
	require.NoError(testInstance, firstError)
	require.Equal(testInstance, 8, firstCount)

	secondCount, secondError := flushingWriter.Write([]byte("synced"))
	require.NoError(testInstance, secondError)
	require.Equal(testInstance, 6, secondCount)

	require.Equal(testInstance, "release synced", recordingWriter.buffer.String())
	require.Equal(testInstance, 2, recordingWriter.flushCount)
}

func TestFlushingWriterPassesThroughPlainWriters(testInstance *testing.T) {
	plainBuffer := &bytes.Buffer{}
	flushingWriter := utils.NewFlushingWriter(plainBuffer)

	writtenCount, writeError := flushingWriter.Write([]byte("plain"))

	require.NoError(testInstance, writeError)
	require.Equal(testInstance, 5, writtenCount)
	require.Equal(testInstance, "plain", plainBuffer.String())
}

func TestFlushingWriterDoesNotDoubleWrap(testInstance *testing.T) {
	plainBuffer := &bytes.Buffer{}
	wrappedOnce := utils.NewFlushingWriter(plainBuffer)
	wrappedTwice := utils.NewFlushingWriter(wrappedOnce)

	require.Same(testInstance, wrappedOnce, wrappedTwice)
	require.Nil(testInstance, utils.NewFlushingWriter(nil))
}
