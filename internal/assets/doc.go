// Package assets loads and validates the webclient's third-party asset
// manifest. The manifest lists bundler inputs by loading tier; websync only
// checks and displays it, the bundler itself stays external.
package assets
