package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetSlideRequest_Validate(t *testing.T) {
	ts := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     SetSlideRequest
		maxKey  int
		wantErr string
	}{
		{name: "valid", req: SetSlideRequest{Key: "sunday-talk", Slide: 3, Timestamp: &ts}},
		{name: "key trimmed", req: SetSlideRequest{Key: "  talk  ", Slide: 0}},
		{name: "empty key", req: SetSlideRequest{Key: "   ", Slide: 1}, wantErr: "key is required"},
		{name: "key too long", req: SetSlideRequest{Key: strings.Repeat("k", 9), Slide: 1}, maxKey: 8, wantErr: "key is too long"},
		{name: "negative slide", req: SetSlideRequest{Key: "k", Slide: -1}, wantErr: "slide must be >= 0"},
		{name: "slide too big", req: SetSlideRequest{Key: "k", Slide: 10001}, wantErr: "slide cannot exceed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := req.Validate(tt.maxKey)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.req.Key), req.Key)
		})
	}
}

func TestSetSlideRequest_ZeroTimestampDropped(t *testing.T) {
	zero := time.Time{}
	req := SetSlideRequest{Key: "k", Slide: 1, Timestamp: &zero}
	require.NoError(t, req.Validate(0))
	assert.Nil(t, req.Timestamp)
}

func TestDefaultPresentationState(t *testing.T) {
	s := DefaultPresentationState("k")
	assert.Equal(t, "k", s.Key)
	assert.Equal(t, 0, s.CurrentSlide)
	assert.False(t, s.Exists)
	assert.True(t, s.LastUpdated.IsZero())
}

func TestSetAppVersionRequest_Validate(t *testing.T) {
	for _, ok := range []string{"1.0.0", " 2.3.4 ", "v10.0.1", "1.2.3-beta.1", "1.2.3+build.5"} {
		req := SetAppVersionRequest{Version: ok}
		assert.NoError(t, req.Validate(), ok)
	}
	for _, bad := range []string{"", "1.0", "latest", "1.0.0.0"} {
		req := SetAppVersionRequest{Version: bad}
		assert.Error(t, req.Validate(), bad)
	}
}

func TestSaveTypingResultRequest_Validate(t *testing.T) {
	valid := func() SaveTypingResultRequest {
		return SaveTypingResultRequest{
			VerseID:     "JHN.3.16",
			Translation: "KJV",
			Reference:   "John 3:16",
			WPM:         62.5,
			Accuracy:    98,
		}
	}

	req := valid()
	req.Reference = "  John 3:16 "
	require.NoError(t, req.Validate())
	assert.Equal(t, "John 3:16", req.Reference)

	tests := []struct {
		name   string
		mutate func(*SaveTypingResultRequest)
	}{
		{"missing verse", func(r *SaveTypingResultRequest) { r.VerseID = "" }},
		{"missing translation", func(r *SaveTypingResultRequest) { r.Translation = " " }},
		{"missing reference", func(r *SaveTypingResultRequest) { r.Reference = "" }},
		{"negative wpm", func(r *SaveTypingResultRequest) { r.WPM = -1 }},
		{"absurd wpm", func(r *SaveTypingResultRequest) { r.WPM = 5000 }},
		{"accuracy over 100", func(r *SaveTypingResultRequest) { r.Accuracy = 100.5 }},
		{"long field", func(r *SaveTypingResultRequest) { r.Reference = strings.Repeat("r", 201) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}
