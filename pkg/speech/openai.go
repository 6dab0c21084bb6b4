package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/voxbrowse/pkg/logging"
	openai "github.com/sashabaranov/go-openai"
)

// NewOpenAIClient builds an audio API client. An empty baseURL keeps the OpenAI default.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return openai.NewClientWithConfig(cfg)
}

// OpenAISpeaker synthesises speech with the audio API and plays it with an external player.
type OpenAISpeaker struct {
	client *openai.Client
	model  openai.SpeechModel
	voice  openai.SpeechVoice
	player []string
	logger *logging.Logger
}

// NewOpenAISpeaker returns a speaker using model and voice, playing through
// player, a command line where "{input}" stands for the mp3 file.
func NewOpenAISpeaker(client *openai.Client, model, voice string, player []string, logger *logging.Logger) *OpenAISpeaker {
	if model == "" {
		model = string(openai.TTSModel1)
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &OpenAISpeaker{
		client: client,
		model:  openai.SpeechModel(model),
		voice:  openai.SpeechVoice(voice),
		player: player,
		logger: logger,
	}
}

// Speak implements Speaker.
func (s *OpenAISpeaker) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	s.logger.Debugf("Speaking: %s", text)

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Close()

	tmpFile, err := os.CreateTemp("", "voxbrowse-tts-*.mp3")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := io.Copy(tmpFile, resp); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := runCommand(ctx, expandArgs(s.player, InputPlaceholder, tmpFile.Name())); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

// WhisperListener records from the microphone with an external recorder and
// transcribes the clip with the audio API.
type WhisperListener struct {
	client   *openai.Client
	model    string
	language string
	recorder []string
	logger   *logging.Logger
}

// NewWhisperListener returns a listener. recorder is a command line where
// "{output}" stands for the wav file it must write; it should stop on silence.
func NewWhisperListener(client *openai.Client, model, language string, recorder []string, logger *logging.Logger) *WhisperListener {
	if model == "" {
		model = openai.Whisper1
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &WhisperListener{
		client:   client,
		model:    model,
		language: language,
		recorder: recorder,
		logger:   logger,
	}
}

// Listen implements Listener. The recorder is killed once timeout elapses;
// whatever it captured by then is still transcribed.
func (l *WhisperListener) Listen(ctx context.Context, timeout time.Duration) (string, error) {
	dir, err := os.MkdirTemp("", "voxbrowse-stt-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)
	clip := filepath.Join(dir, "utterance.wav")

	l.logger.Debugf("Listening for command...")
	recCtx, cancel := context.WithTimeout(ctx, timeout)
	err = runCommand(recCtx, expandArgs(l.recorder, OutputPlaceholder, clip))
	cancel()
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return "", fmt.Errorf("recording failed: %w", err)
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	info, statErr := os.Stat(clip)
	if statErr != nil || info.Size() == 0 {
		l.logger.Debugf("No speech detected within timeout period")
		return "", ErrNoSpeech
	}

	resp, err := l.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    l.model,
		FilePath: clip,
		Language: l.language,
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	text := strings.ToLower(strings.TrimSpace(resp.Text))
	if text == "" {
		return "", ErrNoSpeech
	}
	l.logger.Infof("Recognized: %s", text)
	return text, nil
}
