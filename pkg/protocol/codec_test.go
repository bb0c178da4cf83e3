package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haptics/define"
	"haptics/pkg/errors"
)

func TestPlayerRequest_TurnOffAllRoundTrip(t *testing.T) {
	req := &PlayerRequest{Submit: []SubmitRequest{{Type: SubmitTurnOffAll}}}

	data, err := req.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"submit":[{"type":"turnOffAll"}]}`, string(data))

	decoded, err := DecodePlayerRequest(data)
	require.NoError(t, err)
	assert.Empty(t, decoded.Register)
	require.Len(t, decoded.Submit, 1)
	assert.Equal(t, SubmitTurnOffAll, decoded.Submit[0].Type)
}

func TestPlayerRequest_EncodeFrameAndRegister(t *testing.T) {
	frame := NewDotPointFrame([]DotPoint{{Index: 3, Intensity: 80}}, define.PositionVestFront, 100)
	req := &PlayerRequest{
		Register: []RegisterRequest{{Key: "shot", Project: json.RawMessage(`{"layout":{}}`)}},
		Submit: []SubmitRequest{{
			Type:  SubmitFrame,
			Key:   "hit",
			Frame: &frame,
		}},
	}

	data, err := req.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"register":[{"key":"shot","project":{"layout":{}}}],
		"submit":[{"type":"frame","key":"hit","frame":{
			"position":"VestFront",
			"dotPoints":[{"index":3,"intensity":80}],
			"pathPoints":[],
			"durationMillis":100}}]
	}`, string(data))
}

func TestPlayerRequest_IsEmpty(t *testing.T) {
	var nilReq *PlayerRequest
	assert.True(t, nilReq.IsEmpty())
	assert.True(t, (&PlayerRequest{}).IsEmpty())
	assert.False(t, (&PlayerRequest{Submit: []SubmitRequest{{Type: SubmitTurnOffAll}}}).IsEmpty())
}

func TestNewBytesFrame_SkipsSilentMotors(t *testing.T) {
	motors := make([]byte, define.MotorCount)
	motors[0] = 10
	motors[19] = 100

	frame := NewBytesFrame(motors, define.PositionLeft, 50)
	assert.Equal(t, "Left", frame.Position)
	assert.Equal(t, []DotPoint{{Index: 0, Intensity: 10}, {Index: 19, Intensity: 100}}, frame.DotPoints)
	assert.NotNil(t, frame.PathPoints)
	assert.Empty(t, frame.PathPoints)
}

func TestDecodePlayerResponse(t *testing.T) {
	resp, err := DecodePlayerResponse([]byte(`{"activeKeys":["buzz1"],"status":{"Left":[0,0,50]}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"buzz1"}, resp.ActiveKeys)
	assert.Equal(t, []int{0, 0, 50}, resp.Status["Left"])
	assert.Zero(t, resp.ConnectedDeviceCount)
}

func TestDecodePlayerResponse_DefaultsMissingFields(t *testing.T) {
	resp, err := DecodePlayerResponse([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, resp.ActiveKeys)
	assert.Empty(t, resp.ActiveKeys)
	assert.NotNil(t, resp.Status)
}

func TestDecodePlayerResponse_Malformed(t *testing.T) {
	inputs := []string{
		``,
		`not json`,
		`["array"]`,
		`{"activeKeys":"buzz"}`,
		`{"status":{"Left":"x"}}`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := DecodePlayerResponse([]byte(input))
			require.Error(t, err)
			assert.True(t, errors.IsParse(err))
			assert.True(t, errors.Is(err, errors.ErrParsingFailed))
		})
	}
}
