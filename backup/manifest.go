package backup

import (
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Manifest summarises a successful backup next to its archive.
type Manifest struct {
	Distribution string
	Archive      string
	Format       string
	Compressed   bool
	Size         int64
	Started      time.Time
	Finished     time.Time
}

// NewManifest combines the run configuration with its result.
func NewManifest(cfg Config, res Result) Manifest {
	return Manifest{
		Distribution: cfg.Distribution,
		Archive:      res.Archive,
		Format:       cfg.Format(),
		Compressed:   cfg.Compress,
		Size:         res.Size,
		Started:      res.Started,
		Finished:     res.Finished,
	}
}

// ManifestPath is the manifest location for an archive.
func ManifestPath(archive string) string {
	return archive + ".json"
}

// BuildManifestJSON returns the JSON document for m.
func BuildManifestJSON(m Manifest) string {
	json := `{}`
	json, _ = sjson.Set(json, "distribution", m.Distribution)
	json, _ = sjson.Set(json, "archive", m.Archive)
	json, _ = sjson.Set(json, "format", m.Format)
	json, _ = sjson.Set(json, "compressed", m.Compressed)
	json, _ = sjson.Set(json, "size.bytes", m.Size)
	json, _ = sjson.Set(json, "size.human", humanize.Bytes(uint64(m.Size)))
	json, _ = sjson.Set(json, "started", m.Started.Format(time.RFC3339))
	json, _ = sjson.Set(json, "finished", m.Finished.Format(time.RFC3339))
	json, _ = sjson.Set(json, "duration_seconds", m.Finished.Sub(m.Started).Seconds())
	return json
}

// WriteManifest stores the manifest next to its archive and returns its path.
func (b *Backup) WriteManifest(m Manifest) (string, error) {
	path := ManifestPath(m.Archive)
	if err := os.WriteFile(path, []byte(BuildManifestJSON(m)), 0o644); err != nil {
		return "", errors.Annotatef(err, "writing manifest %s", path)
	}
	b.log.Info("Manifest written", "path", path)
	return path, nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, errors.Annotatef(err, "reading manifest %s", path)
	}
	if !gjson.ValidBytes(data) {
		return Manifest{}, errors.NotValidf("manifest %s", path)
	}
	doc := gjson.ParseBytes(data)
	m := Manifest{
		Distribution: doc.Get("distribution").String(),
		Archive:      doc.Get("archive").String(),
		Format:       doc.Get("format").String(),
		Compressed:   doc.Get("compressed").Bool(),
		Size:         doc.Get("size.bytes").Int(),
	}
	if m.Started, err = time.Parse(time.RFC3339, doc.Get("started").String()); err != nil {
		return Manifest{}, errors.Annotate(err, "manifest started")
	}
	if m.Finished, err = time.Parse(time.RFC3339, doc.Get("finished").String()); err != nil {
		return Manifest{}, errors.Annotate(err, "manifest finished")
	}
	return m, nil
}
