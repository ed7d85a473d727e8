package backup

import (
	"os"
	"time"

	"github.com/juju/errors"
	"github.com/tidwall/gjson"
)

// DefaultTimeout bounds the compressed export pipeline.
const DefaultTimeout = 3600 * 60 * time.Second

// DefaultShutdownDelay lets the instance's backing process exit after terminate.
const DefaultShutdownDelay = 5 * time.Second

// Settings names the external tools and the timings used around them.
type Settings struct {
	WSL           string
	Zstd          string
	ZstdArgs      []string
	Explorer      string
	Frontend      string
	Timeout       time.Duration
	ShutdownDelay time.Duration
}

// DefaultSettings returns the settings used without a config file.
func DefaultSettings() Settings {
	return Settings{
		WSL:           "wsl.exe",
		Zstd:          "zstd.exe",
		Explorer:      "explorer.exe",
		Frontend:      "wsl.exe",
		Timeout:       DefaultTimeout,
		ShutdownDelay: DefaultShutdownDelay,
	}
}

// LoadSettings reads a JSON settings file. An empty path yields the defaults.
func LoadSettings(path string) (Settings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, errors.Annotatef(err, "reading config %s", path)
	}
	s, err := ParseSettings(data)
	if err != nil {
		return Settings{}, errors.Annotatef(err, "config %s", path)
	}
	return s, nil
}

// ParseSettings overlays the keys present in a JSON document on the defaults.
//
// Durations are either Go duration strings ("90m") or a number of seconds.
func ParseSettings(data []byte) (Settings, error) {
	if !gjson.ValidBytes(data) {
		return Settings{}, errors.NotValidf("JSON document")
	}
	s := DefaultSettings()
	doc := gjson.ParseBytes(data)

	for key, dst := range map[string]*string{
		"wsl":      &s.WSL,
		"zstd":     &s.Zstd,
		"explorer": &s.Explorer,
		"frontend": &s.Frontend,
	} {
		if v := doc.Get(key); v.Exists() {
			if v.Type != gjson.String || v.String() == "" {
				return Settings{}, errors.NotValidf("%q (want non-empty string)", key)
			}
			*dst = v.String()
		}
	}

	if v := doc.Get("zstd_args"); v.Exists() {
		if !v.IsArray() {
			return Settings{}, errors.NotValidf("%q (want array)", "zstd_args")
		}
		s.ZstdArgs = nil
		for _, arg := range v.Array() {
			s.ZstdArgs = append(s.ZstdArgs, arg.String())
		}
	}

	for key, dst := range map[string]*time.Duration{
		"timeout":        &s.Timeout,
		"shutdown_delay": &s.ShutdownDelay,
	} {
		v := doc.Get(key)
		if !v.Exists() {
			continue
		}
		d, err := parseDuration(v)
		if err != nil {
			return Settings{}, errors.Annotatef(err, "%q", key)
		}
		*dst = d
	}
	if s.Timeout == 0 {
		return Settings{}, errors.NotValidf("%q of zero", "timeout")
	}
	return s, nil
}

func parseDuration(v gjson.Result) (time.Duration, error) {
	var d time.Duration
	switch v.Type {
	case gjson.Number:
		d = time.Duration(v.Float() * float64(time.Second))
	case gjson.String:
		var err error
		if d, err = time.ParseDuration(v.String()); err != nil {
			return 0, errors.NotValidf("duration %q", v.String())
		}
	default:
		return 0, errors.NotValidf("duration %s", v.Raw)
	}
	if d < 0 {
		return 0, errors.NotValidf("negative duration %s", v.Raw)
	}
	return d, nil
}
