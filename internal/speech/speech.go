// Package speech wraps Google Cloud Speech-to-Text and Text-to-Speech for
// the voice chat endpoint.
package speech

import (
	"context"
	"errors"
	"fmt"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

// ErrNotConfigured is returned when no service-account credentials were provided.
var ErrNotConfigured = errors.New("speech clients not configured")

const languageCode = "en-US"

// Client bundles the STT and TTS service clients.
type Client struct {
	stt *speech.Client
	tts *texttospeech.Client
}

// New builds both clients from a service-account credentials file. An empty
// credsFile yields an unconfigured client rather than an error.
func New(ctx context.Context, credsFile string) (*Client, error) {
	if credsFile == "" {
		return &Client{}, nil
	}

	stt, err := speech.NewClient(ctx, option.WithCredentialsFile(credsFile))
	if err != nil {
		return nil, fmt.Errorf("speech-to-text client: %w", err)
	}
	tts, err := texttospeech.NewClient(ctx, option.WithCredentialsFile(credsFile))
	if err != nil {
		stt.Close()
		return nil, fmt.Errorf("text-to-speech client: %w", err)
	}
	return &Client{stt: stt, tts: tts}, nil
}

// Configured reports whether both service clients are available.
func (c *Client) Configured() bool {
	return c.stt != nil && c.tts != nil
}

// Close releases both service connections.
func (c *Client) Close() {
	if c.stt != nil {
		c.stt.Close()
	}
	if c.tts != nil {
		c.tts.Close()
	}
}

// Transcribe converts LINEAR16 audio to text. It returns an empty string
// when the service recognised nothing.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if c.stt == nil {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := c.stt.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:     speechpb.RecognitionConfig_LINEAR16,
			LanguageCode: languageCode,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Results) == 0 || len(resp.Results[0].Alternatives) == 0 {
		return "", nil
	}
	return resp.Results[0].Alternatives[0].Transcript, nil
}

// Synthesize renders text as MP3 audio.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.tts == nil {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	resp, err := c.tts.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: languageCode,
			Name:         "en-US-Standard-C",
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	})
	if err != nil {
		return nil, err
	}
	return resp.AudioContent, nil
}
