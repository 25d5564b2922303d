package api

// Status is the result code of one API call. Zero is success; error codes
// are negative and stable across API versions.
type Status int32

const (
	StatusOK Status = 0

	StatusGenericError             Status = -1
	StatusInternalError            Status = -2
	StatusInvalidPluginID          Status = -3
	StatusConnectionNotFound       Status = -4
	StatusConnectionUnsynchronized Status = -5
	StatusNoActiveConnection       Status = -6
	StatusUserNotFound             Status = -7
	StatusChannelNotFound          Status = -8
	StatusPointerNotFound          Status = -9
	StatusUnsynchronizedBlob       Status = -10
	StatusUnknownSettingsKey       Status = -11
	StatusWrongSettingsType        Status = -12
	StatusUnknownTransmissionMode  Status = -13
	StatusInvalidMuteTarget        Status = -14
	StatusDataTooBig               Status = -15
	StatusDataIDTooLong            Status = -16
	StatusUnsupportedByServer      Status = -17
	StatusAudioNotAvailable        Status = -18
	StatusInvalidSample            Status = -19
	StatusRequestTimeout           Status = -20
)

var statusNames = map[Status]string{
	StatusOK:                       "OK",
	StatusGenericError:             "GENERIC_ERROR",
	StatusInternalError:            "INTERNAL_ERROR",
	StatusInvalidPluginID:          "INVALID_PLUGIN_ID",
	StatusConnectionNotFound:       "CONNECTION_NOT_FOUND",
	StatusConnectionUnsynchronized: "CONNECTION_UNSYNCHRONIZED",
	StatusNoActiveConnection:       "NO_ACTIVE_CONNECTION",
	StatusUserNotFound:             "USER_NOT_FOUND",
	StatusChannelNotFound:          "CHANNEL_NOT_FOUND",
	StatusPointerNotFound:          "POINTER_NOT_FOUND",
	StatusUnsynchronizedBlob:       "UNSYNCHRONIZED_BLOB",
	StatusUnknownSettingsKey:       "UNKNOWN_SETTINGS_KEY",
	StatusWrongSettingsType:        "WRONG_SETTINGS_TYPE",
	StatusUnknownTransmissionMode:  "UNKNOWN_TRANSMISSION_MODE",
	StatusInvalidMuteTarget:        "INVALID_MUTE_TARGET",
	StatusDataTooBig:               "DATA_TOO_BIG",
	StatusDataIDTooLong:            "DATA_ID_TOO_LONG",
	StatusUnsupportedByServer:      "OPERATION_UNSUPPORTED_BY_SERVER",
	StatusAudioNotAvailable:        "AUDIO_NOT_AVAILABLE",
	StatusInvalidSample:            "INVALID_SAMPLE",
	StatusRequestTimeout:           "API_REQUEST_TIMEOUT",
}

// String returns the symbolic name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN_STATUS"
}

// OK reports whether the status is success.
func (s Status) OK() bool { return s == StatusOK }
