package utils_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/websync/internal/utils"
)

const (
	testEnvironmentPrefixConstant     = "TESTWEBSYNC"
	testConfigurationNameConstant     = "config"
	testConfigurationTypeConstant     = "yaml"
	testConfigFileNameConstant        = "config.yaml"
	testConfigContentTemplateConstant = "common:\n  log_level: %s\n"
	testLogLevelEnvironmentVariable   = testEnvironmentPrefixConstant + "_COMMON_LOG_LEVEL"
)

type configurationFixture struct {
	Common configurationCommonFixture `mapstructure:"common"`
}

type configurationCommonFixture struct {
	LogLevel string `mapstructure:"log_level"`
}

func TestConfigurationLoaderLoadConfiguration(testInstance *testing.T) {
	testCases := []struct {
		name                string
		embeddedLogLevel    string
		fileLogLevel        string
		environmentLogLevel string
		expectedLogLevel    string
	}{
		{
			name:             "embedded_configuration_merges",
			embeddedLogLevel: "debug",
			expectedLogLevel: "debug",
		},
		{
			name:             "config_file_overrides_embedded",
			embeddedLogLevel: "info",
			fileLogLevel:     "warn",
			expectedLogLevel: "warn",
		},
		{
			name:                "environment_overrides_file",
			embeddedLogLevel:    "info",
			fileLogLevel:        "warn",
			environmentLogLevel: "error",
			expectedLogLevel:    "error",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			configurationFilePath := ""
			if len(testCase.fileLogLevel) > 0 {
				configurationFilePath = filepath.Join(subtestInstance.TempDir(), testConfigFileNameConstant)
				configurationContent := fmt.Sprintf(testConfigContentTemplateConstant, testCase.fileLogLevel)
				require.NoError(subtestInstance, os.WriteFile(configurationFilePath, []byte(configurationContent), 0o600))
			}
			if len(testCase.environmentLogLevel) > 0 {
				subtestInstance.Setenv(testLogLevelEnvironmentVariable, testCase.environmentLogLevel)
			}

			configurationLoader := utils.NewConfigurationLoader(
				testConfigurationNameConstant,
				testConfigurationTypeConstant,
				testEnvironmentPrefixConstant,
				nil,
			)
			embeddedContent := fmt.Sprintf(testConfigContentTemplateConstant, testCase.embeddedLogLevel)
			configurationLoader.SetEmbeddedConfiguration([]byte(embeddedContent), testConfigurationTypeConstant)

			loadedFixture := configurationFixture{}
			loadedConfiguration, loadError := configurationLoader.LoadConfiguration(configurationFilePath, nil, &loadedFixture)

			require.NoError(subtestInstance, loadError)
			require.Equal(subtestInstance, testCase.expectedLogLevel, loadedFixture.Common.LogLevel)
			if len(configurationFilePath) > 0 {
				require.Equal(subtestInstance, configurationFilePath, loadedConfiguration.ConfigFileUsed)
			}
		})
	}
}

func TestConfigurationLoaderReportsUnreadableConfiguration(testInstance *testing.T) {
	malformedPath := filepath.Join(testInstance.TempDir(), testConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(malformedPath, []byte("common: [broken"), 0o600))

	configurationLoader := utils.NewConfigurationLoader(
		testConfigurationNameConstant,
		testConfigurationTypeConstant,
		testEnvironmentPrefixConstant,
		nil,
	)

	loadedFixture := configurationFixture{}
	_, loadError := configurationLoader.LoadConfiguration(malformedPath, nil, &loadedFixture)

	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), "failed to read configuration")
}
