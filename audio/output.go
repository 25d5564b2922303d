package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrInvalidSample reports a sample that cannot be loaded or played.
var ErrInvalidSample = errors.New("audio: invalid sample")

// Output plays audio samples. A nil Output means no output device is active.
type Output interface {
	// PlaySample plays the referenced audio file at the given volume,
	// where 1.0 is unity gain. It returns ErrInvalidSample when the file
	// cannot be loaded as audio.
	PlaySample(path string, volume float32) error
}

// sampleExtensions lists the container formats the sample player accepts.
var sampleExtensions = map[string]bool{
	".wav":  true,
	".ogg":  true,
	".opus": true,
	".flac": true,
}

// FileOutput validates and plays sample files. Decoding and mixing live in
// the audio engine proper; this wrapper performs the load-side validation the
// API reports on and hands the file off.
type FileOutput struct {
	logger *zap.Logger
	play   func(path string, volume float32) error
}

// NewFileOutput creates a FileOutput. play receives validated files; a nil
// play only validates, which is what the demo host and tests use.
func NewFileOutput(logger *zap.Logger, play func(path string, volume float32) error) *FileOutput {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileOutput{logger: logger, play: play}
}

// PlaySample implements Output.
func (o *FileOutput) PlaySample(path string, volume float32) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !sampleExtensions[ext] {
		return fmt.Errorf("%w: unsupported format %q", ErrInvalidSample, ext)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSample, path)
	}
	if o.play != nil {
		if err := o.play(path, volume); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSample, err)
		}
	}
	o.logger.Debug("sample played", zap.String("path", path), zap.Float32("volume", volume))
	return nil
}
