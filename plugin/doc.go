// Package plugin tracks the identity of loaded plugins.
//
// Every API call carries the id of the plugin making it; the registry is the
// source of truth for whether that id still refers to a live plugin. The
// registry also owns the microphone-activation override flag, which is
// plugin-scoped host state rather than a user setting.
package plugin
