package api

import (
	"github.com/woodgreat/mumble/plugin"
	"github.com/woodgreat/mumble/settings"
	"github.com/woodgreat/mumble/state"
)

// TableV1_0 is the function table handed to plugins built against the first
// API generation. Every entry is a blocking call bounded by the configured
// timeout.
type TableV1_0 struct {
	FreeMemory                func(callerID plugin.ID, ptr any) Status
	GetActiveServerConnection func(callerID plugin.ID) (state.ConnectionID, Status)
	IsConnectionSynchronized  func(callerID plugin.ID, connID state.ConnectionID) (bool, Status)

	GetLocalUserID               func(callerID plugin.ID, connID state.ConnectionID) (state.UserID, Status)
	GetUserName                  func(callerID plugin.ID, connID state.ConnectionID, userID state.UserID) (*string, Status)
	GetChannelName               func(callerID plugin.ID, connID state.ConnectionID, channelID state.ChannelID) (*string, Status)
	GetAllUsers                  func(callerID plugin.ID, connID state.ConnectionID) (*[]state.UserID, Status)
	GetAllChannels               func(callerID plugin.ID, connID state.ConnectionID) (*[]state.ChannelID, Status)
	GetChannelOfUser             func(callerID plugin.ID, connID state.ConnectionID, userID state.UserID) (state.ChannelID, Status)
	GetUsersInChannel            func(callerID plugin.ID, connID state.ConnectionID, channelID state.ChannelID) (*[]state.UserID, Status)
	GetLocalUserTransmissionMode func(callerID plugin.ID) (state.TransmissionMode, Status)
	IsUserLocallyMuted           func(callerID plugin.ID, connID state.ConnectionID, userID state.UserID) (bool, Status)
	IsLocalUserMuted             func(callerID plugin.ID) (bool, Status)
	IsLocalUserDeafened          func(callerID plugin.ID) (bool, Status)
	GetUserHash                  func(callerID plugin.ID, connID state.ConnectionID, userID state.UserID) (*string, Status)
	GetServerHash                func(callerID plugin.ID, connID state.ConnectionID) (*string, Status)
	GetUserComment               func(callerID plugin.ID, connID state.ConnectionID, userID state.UserID) (*string, Status)
	GetChannelDescription        func(callerID plugin.ID, connID state.ConnectionID, channelID state.ChannelID) (*string, Status)

	RequestLocalUserTransmissionMode    func(callerID plugin.ID, mode state.TransmissionMode) Status
	RequestUserMove                     func(callerID plugin.ID, connID state.ConnectionID, userID state.UserID, channelID state.ChannelID, password string) Status
	RequestMicrophoneActivationOverride func(callerID plugin.ID, activate bool) Status
	RequestLocalMute                    func(callerID plugin.ID, connID state.ConnectionID, userID state.UserID, muted bool) Status
	RequestLocalUserMute                func(callerID plugin.ID, muted bool) Status
	RequestLocalUserDeaf                func(callerID plugin.ID, deafened bool) Status
	RequestSetLocalUserComment          func(callerID plugin.ID, connID state.ConnectionID, comment string) Status

	FindUserByName    func(callerID plugin.ID, connID state.ConnectionID, name string) (state.UserID, Status)
	FindChannelByName func(callerID plugin.ID, connID state.ConnectionID, name string) (state.ChannelID, Status)

	GetSettingBool   func(callerID plugin.ID, key settings.Key) (bool, Status)
	GetSettingInt    func(callerID plugin.ID, key settings.Key) (int64, Status)
	GetSettingDouble func(callerID plugin.ID, key settings.Key) (float64, Status)
	GetSettingString func(callerID plugin.ID, key settings.Key) (*string, Status)
	SetSettingBool   func(callerID plugin.ID, key settings.Key, value bool) Status
	SetSettingInt    func(callerID plugin.ID, key settings.Key, value int64) Status
	SetSettingDouble func(callerID plugin.ID, key settings.Key, value float64) Status
	SetSettingString func(callerID plugin.ID, key settings.Key, value string) Status

	SendData   func(callerID plugin.ID, connID state.ConnectionID, users []state.UserID, data []byte, dataID string) Status
	Log        func(callerID plugin.ID, message string) Status
	PlaySample func(callerID plugin.ID, path string) Status
}

// TableV1_2 extends the first generation with volume-aware sample playback.
// Every unchanged entry is the same function value as in the v1.0 table.
type TableV1_2 struct {
	TableV1_0

	PlaySampleVolume func(callerID plugin.ID, path string, volume float32) Status
}

// TableV1_0 builds the first-generation function table for this API
// instance.
func (a *API) TableV1_0() TableV1_0 {
	return TableV1_0{
		FreeMemory:                a.FreeMemory,
		GetActiveServerConnection: a.GetActiveServerConnection,
		IsConnectionSynchronized:  a.IsConnectionSynchronized,

		GetLocalUserID:               a.GetLocalUserID,
		GetUserName:                  a.GetUserName,
		GetChannelName:               a.GetChannelName,
		GetAllUsers:                  a.GetAllUsers,
		GetAllChannels:               a.GetAllChannels,
		GetChannelOfUser:             a.GetChannelOfUser,
		GetUsersInChannel:            a.GetUsersInChannel,
		GetLocalUserTransmissionMode: a.GetLocalUserTransmissionMode,
		IsUserLocallyMuted:           a.IsUserLocallyMuted,
		IsLocalUserMuted:             a.IsLocalUserMuted,
		IsLocalUserDeafened:          a.IsLocalUserDeafened,
		GetUserHash:                  a.GetUserHash,
		GetServerHash:                a.GetServerHash,
		GetUserComment:               a.GetUserComment,
		GetChannelDescription:        a.GetChannelDescription,

		RequestLocalUserTransmissionMode:    a.RequestLocalUserTransmissionMode,
		RequestUserMove:                     a.RequestUserMove,
		RequestMicrophoneActivationOverride: a.RequestMicrophoneActivationOverride,
		RequestLocalMute:                    a.RequestLocalMute,
		RequestLocalUserMute:                a.RequestLocalUserMute,
		RequestLocalUserDeaf:                a.RequestLocalUserDeaf,
		RequestSetLocalUserComment:          a.RequestSetLocalUserComment,

		FindUserByName:    a.FindUserByName,
		FindChannelByName: a.FindChannelByName,

		GetSettingBool:   a.GetSettingBool,
		GetSettingInt:    a.GetSettingInt,
		GetSettingDouble: a.GetSettingDouble,
		GetSettingString: a.GetSettingString,
		SetSettingBool:   a.SetSettingBool,
		SetSettingInt:    a.SetSettingInt,
		SetSettingDouble: a.SetSettingDouble,
		SetSettingString: a.SetSettingString,

		SendData:   a.SendData,
		Log:        a.Log,
		PlaySample: a.PlaySample,
	}
}

// TableV1_2 builds the second-generation table by reusing the v1.0 entries
// and adding the volume-aware playback call.
func (a *API) TableV1_2() TableV1_2 {
	return TableV1_2{
		TableV1_0:        a.TableV1_0(),
		PlaySampleVolume: a.PlaySampleVolume,
	}
}
