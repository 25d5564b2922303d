package settings

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-yaml"
)

// Key identifies one setting reachable through the plugin API.
type Key int32

const (
	// KeyInvalid is the sentinel for "no setting"; every accessor rejects it.
	KeyInvalid Key = -1

	KeyAudioInputVoiceHold Key = iota
	KeyAudioInputVADSilenceThreshold
	KeyAudioInputVADSpeechThreshold
	KeyAudioOutputPAMinimumDistance
	KeyAudioOutputPAMaximumDistance
	KeyAudioOutputPABloom
	KeyAudioOutputPAMinimumVolume
)

var keyNames = map[Key]string{
	KeyAudioInputVoiceHold:           "audio_input_voice_hold",
	KeyAudioInputVADSilenceThreshold: "audio_input_vad_silence_threshold",
	KeyAudioInputVADSpeechThreshold:  "audio_input_vad_speech_threshold",
	KeyAudioOutputPAMinimumDistance:  "audio_output_pa_minimum_distance",
	KeyAudioOutputPAMaximumDistance:  "audio_output_pa_maximum_distance",
	KeyAudioOutputPABloom:            "audio_output_pa_bloom",
	KeyAudioOutputPAMinimumVolume:    "audio_output_pa_minimum_volume",
}

// String returns the persistent name of the key.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("key(%d)", int32(k))
}

var (
	// ErrUnknownKey reports a key with no setting behind it.
	ErrUnknownKey = errors.New("settings: unknown key")
	// ErrWrongType reports a typed access that does not match the stored
	// variant.
	ErrWrongType = errors.New("settings: wrong value type")
)

// Store is the untyped settings table. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	values map[Key]Value
}

// NewStore creates a store seeded with the client defaults. The seeded kind
// of each key is authoritative for later type checks.
func NewStore() *Store {
	return &Store{
		values: map[Key]Value{
			KeyAudioInputVoiceHold:           Int(250),
			KeyAudioInputVADSilenceThreshold: Float(0.3),
			KeyAudioInputVADSpeechThreshold:  Float(0.6),
			KeyAudioOutputPAMinimumDistance:  Float(1.0),
			KeyAudioOutputPAMaximumDistance:  Float(15.0),
			KeyAudioOutputPABloom:            Float(0.5),
			KeyAudioOutputPAMinimumVolume:    Float(0.15),
		},
	}
}

// Get returns the raw tagged value stored under key.
func (s *Store) Get(key Key) (Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return Value{}, ErrUnknownKey
	}
	return v, nil
}

// GetBool reads a bool-typed setting.
func (s *Store) GetBool(key Key) (bool, error) {
	v, err := s.Get(key)
	if err != nil {
		return false, err
	}
	value, ok := v.AsBool()
	if !ok {
		return false, ErrWrongType
	}
	return value, nil
}

// GetInt reads an int-typed setting.
func (s *Store) GetInt(key Key) (int64, error) {
	v, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	value, ok := v.AsInt()
	if !ok {
		return 0, ErrWrongType
	}
	return value, nil
}

// GetFloat reads a float-typed setting.
func (s *Store) GetFloat(key Key) (float64, error) {
	v, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	value, ok := v.AsFloat()
	if !ok {
		return 0, ErrWrongType
	}
	return value, nil
}

// GetString reads a string-typed setting.
func (s *Store) GetString(key Key) (string, error) {
	v, err := s.Get(key)
	if err != nil {
		return "", err
	}
	value, ok := v.AsString()
	if !ok {
		return "", ErrWrongType
	}
	return value, nil
}

// Set stores value under key. The key must already exist and value must match
// the key's kind.
func (s *Store) Set(key Key, value Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.values[key]
	if !ok {
		return ErrUnknownKey
	}
	if current.Kind() != value.Kind() {
		return ErrWrongType
	}
	s.values[key] = value
	return nil
}

// Seed inserts or replaces a key with a new default, fixing its kind. It is
// meant for host wiring, not for plugin access paths.
func (s *Store) Seed(key Key, value Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Save writes the store to path as YAML.
func (s *Store) Save(path string) error {
	s.mu.RLock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k.String()] = v.any()
	}
	s.mu.RUnlock()

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("settings: write: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load reads values from a YAML file written by Save, ignoring names it does
// not know and values whose type no longer matches. A missing file leaves the
// defaults untouched.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("settings: read: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("settings: unmarshal: %w", err)
	}

	byName := make(map[string]Key, len(keyNames))
	for k, name := range keyNames {
		byName[name] = k
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for name, v := range raw {
		key, ok := byName[name]
		if !ok {
			continue
		}
		current := s.values[key]
		switch current.Kind() {
		case KindBool:
			if b, ok := v.(bool); ok {
				s.values[key] = Bool(b)
			}
		case KindInt:
			switch n := v.(type) {
			case int64:
				s.values[key] = Int(n)
			case uint64:
				s.values[key] = Int(int64(n))
			case int:
				s.values[key] = Int(int64(n))
			}
		case KindFloat:
			switch n := v.(type) {
			case float64:
				s.values[key] = Float(n)
			case int64:
				s.values[key] = Float(float64(n))
			case uint64:
				s.values[key] = Float(float64(n))
			case int:
				s.values[key] = Float(float64(n))
			}
		case KindString:
			if str, ok := v.(string); ok {
				s.values[key] = String(str)
			}
		}
	}
	return nil
}
