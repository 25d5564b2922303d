// Package audio exposes the narrow slice of the audio subsystem the plugin
// API needs: playing a sample file through the active output device.
package audio
