// Package snapshot writes search results and reports to timestamped JSON
// files in the output directory and reads the newest one back.
package snapshot

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/buscajob/buscajob/internal/model"
)

const (
	resultPrefix = "resultados_"
	reportPrefix = "relatorio_fixo_"
	exportPrefix = "vagas_buscajob_"
	stampLayout  = "20060102_150405"
	dayLayout    = "20060102"
)

// ErrUnsupportedFormat is returned by Export for formats other than json/csv.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Result is the content of a resultados_*.json file.
type Result struct {
	Timestamp time.Time            `json:"timestamp"`
	Criteria  model.SearchCriteria `json:"criterios"`
	Total     int                  `json:"total_vagas"`
	Postings  []model.JobPosting   `json:"vagas"`
}

// Report is the content of a relatorio_fixo_*.json file.
type Report struct {
	Timestamp time.Time          `json:"timestamp"`
	Roles     []string           `json:"cargos"`
	Cities    []string           `json:"cidades"`
	Sites     []string           `json:"sites"`
	Queries   int                `json:"total_consultas"`
	Total     int                `json:"total_vagas"`
	Postings  []model.JobPosting `json:"vagas"`
}

// DefaultRetention is the age past which undated files are cleaned up.
const DefaultRetention = 24 * time.Hour

// Sink owns the output directory.
type Sink struct {
	dir       string
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Sink.
type Option func(*Sink)

// WithRetention overrides DefaultRetention.
func WithRetention(d time.Duration) Option {
	return func(s *Sink) {
		if d > 0 {
			s.retention = d
		}
	}
}

// New creates the output directory if needed.
func New(dir string, logger *slog.Logger, opts ...Option) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir %s: %w", dir, err)
	}
	s := &Sink{dir: dir, retention: DefaultRetention, now: time.Now, logger: logger}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Dir returns the output directory.
func (s *Sink) Dir() string { return s.dir }

// Path joins name onto the output directory.
func (s *Sink) Path(name string) string { return filepath.Join(s.dir, name) }

// Save writes one search result and returns the file name.
func (s *Sink) Save(criteria model.SearchCriteria, postings []model.JobPosting) (string, error) {
	now := s.now()
	if postings == nil {
		postings = []model.JobPosting{}
	}
	name := resultPrefix + now.Format(stampLayout) + ".json"
	res := Result{Timestamp: now, Criteria: criteria, Total: len(postings), Postings: postings}
	if err := s.writeJSON(name, res); err != nil {
		return "", err
	}
	s.logger.Info("results saved", "file", name, "count", len(postings))
	return name, nil
}

// SaveReport writes a fixed report and returns the file name. A zero
// Timestamp is filled with the current time.
func (s *Sink) SaveReport(r Report) (string, error) {
	now := s.now()
	if r.Timestamp.IsZero() {
		r.Timestamp = now
	}
	if r.Postings == nil {
		r.Postings = []model.JobPosting{}
	}
	name := reportPrefix + now.Format(stampLayout) + ".json"
	if err := s.writeJSON(name, r); err != nil {
		return "", err
	}
	s.logger.Info("report saved", "file", name, "count", r.Total)
	return name, nil
}

// Latest reads the resultados_ file with the newest modification time. It
// returns model.ErrNotFound when there is none.
func (s *Sink) Latest() (string, Result, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", Result{}, fmt.Errorf("reading output dir: %w", err)
	}

	var (
		newest  string
		newestT time.Time
	)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, resultPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestT) {
			newest, newestT = name, info.ModTime()
		}
	}
	if newest == "" {
		return "", Result{}, model.ErrNotFound
	}

	data, err := os.ReadFile(s.Path(newest))
	if err != nil {
		return "", Result{}, fmt.Errorf("reading %s: %w", newest, err)
	}
	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return "", Result{}, fmt.Errorf("decoding %s: %w", newest, err)
	}
	return newest, res, nil
}

// Export writes postings as "json" or "csv" to vagas_buscajob_<ts>.<ext>.
func (s *Sink) Export(postings []model.JobPosting, format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "json"
	}
	name := exportPrefix + s.now().Format(stampLayout) + "." + format

	switch format {
	case "json":
		if postings == nil {
			postings = []model.JobPosting{}
		}
		if err := s.writeJSON(name, postings); err != nil {
			return "", err
		}
	case "csv":
		if err := s.writeFile(name, func(f *os.File) error { return writeCSV(f, postings) }); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	s.logger.Info("postings exported", "file", name, "count", len(postings))
	return name, nil
}

// Cleanup removes resultados_ and relatorio_fixo_ files not dated today.
// Other files with those prefixes go once their modification time is older
// than the retention.
func (s *Sink) Cleanup(now time.Time) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading output dir: %w", err)
	}

	today := now.Format(dayLayout)
	var removed []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		prefix := ""
		switch {
		case strings.HasPrefix(name, resultPrefix):
			prefix = resultPrefix
		case strings.HasPrefix(name, reportPrefix):
			prefix = reportPrefix
		default:
			continue
		}

		if !stale(e, strings.TrimPrefix(name, prefix), today, now, s.retention) {
			continue
		}
		if err := os.Remove(s.Path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to remove old result file", "file", name, "error", err)
			continue
		}
		removed = append(removed, name)
	}
	if len(removed) > 0 {
		s.logger.Info("old result files removed", "count", len(removed), "files", removed)
	}
	return removed, nil
}

func stale(e fs.DirEntry, rest, today string, now time.Time, retention time.Duration) bool {
	if len(rest) >= len(dayLayout) {
		if _, err := time.Parse(dayLayout, rest[:len(dayLayout)]); err == nil {
			if rest[:len(dayLayout)] != today {
				return true
			}
		}
	}
	info, err := e.Info()
	if err != nil {
		return false
	}
	return now.Sub(info.ModTime()) > retention
}

func (s *Sink) writeJSON(name string, v any) error {
	return s.writeFile(name, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

// writeFile writes through a temp file so readers never see a partial file.
func (s *Sink) writeFile(name string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(s.dir, ".tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(name)); err != nil {
		return fmt.Errorf("renaming %s: %w", name, err)
	}
	return nil
}

var csvHeader = []string{
	"id", "titulo", "empresa", "localizacao", "salario", "tipo_contrato",
	"nivel_experiencia", "modalidade", "data_publicacao", "site_origem", "url",
}

func writeCSV(f *os.File, postings []model.JobPosting) error {
	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range postings {
		row := []string{
			p.ID(), p.Title, p.Company, p.Location, p.Salary, p.ContractType,
			p.ExperienceLevel, p.Modality, p.PublishedAt, p.SourceSite, p.URLString(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
