package shim

import (
	"testing"

	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/ftag"
	"github.com/motiontrack/api-native/api/errorkinds"
	"github.com/motiontrack/api-native/api/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineAnswersFromScriptThenSucceeds(t *testing.T) {
	e := NewEngine(Script{
		CallConnectCallbacks: {tracking.StatusNoMotionTrackingPermission, tracking.StatusInvalid},
	})

	assert.ErrorIs(t, e.ConnectCallbacks(), errorkinds.ErrPermissionMissing)
	assert.ErrorIs(t, e.ConnectCallbacks(), errorkinds.ErrInvalidArgument)
	assert.NoError(t, e.ConnectCallbacks())
	assert.Equal(t, 3, e.Count(CallConnectCallbacks))
}

func TestEngineConnectRequiresConfig(t *testing.T) {
	e := NewEngine(nil)

	assert.ErrorIs(t, e.Connect(), errorkinds.ErrInvalidArgument)
	assert.False(t, e.Connected())

	require.NoError(t, e.SetupConfig())
	require.NoError(t, e.Connect())
	assert.True(t, e.Connected())

	e.Disconnect()
	e.Disconnect()
	assert.False(t, e.Connected())
	assert.Equal(t, 2, e.Count(CallDisconnect))
	assert.Equal(t, []Call{CallConnect, CallSetupConfig, CallConnect, CallDisconnect, CallDisconnect}, e.Calls())
}

func TestEngineFailedConnectReleasesConfig(t *testing.T) {
	e := NewEngine(Script{CallConnect: {tracking.StatusError}})

	require.NoError(t, e.SetupConfig())
	assert.ErrorIs(t, e.Connect(), errorkinds.ErrEngine)
	assert.ErrorIs(t, e.Connect(), errorkinds.ErrInvalidArgument, "configuration is released after a failed connect")
}

func TestEngineRecordsHost(t *testing.T) {
	e := NewEngine(Script{CallInitialize: {tracking.StatusError}})

	assert.ErrorIs(t, e.Initialize("activity"), errorkinds.ErrEngine)
	assert.Nil(t, e.Host())

	require.NoError(t, e.Initialize("activity"))
	assert.Equal(t, "activity", e.Host())
}

func TestLoadScript(t *testing.T) {
	script, err := LoadScript([]byte(`{"connect_callbacks":[-3],"connect":[0,-1]}`))
	require.NoError(t, err)

	assert.Equal(t, []tracking.StatusCode{tracking.StatusNoMotionTrackingPermission}, script[CallConnectCallbacks])
	assert.Equal(t, []tracking.StatusCode{tracking.StatusSuccess, tracking.StatusError}, script[CallConnect])

	_, err = LoadScript([]byte(`{"render":[0]}`))
	assert.ErrorIs(t, err, errorkinds.ErrInvalidArgument)
	assert.Equal(t, ftag.InvalidArgument, ftag.Get(err))
	assert.Equal(t, "render", fctx.Unwrap(err)["call"])
}
