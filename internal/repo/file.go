package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkordes/trainline/internal/domain"
)

const (
	fieldSep = ";"
	stopSep  = ","
)

// FileStore keeps the collection in a plain text file, one train per line:
//
//	id;start;end;intermediate1,intermediate2,...
//
// The fourth field is omitted when a train has no intermediate stops. A
// literal separator inside a name is written as \; or \, (see EncodeLine).
type FileStore struct {
	path   string
	logger *slog.Logger
}

var _ TrainStore = (*FileStore)(nil)

// NewFileStore returns a store backed by the file at path. A nil logger falls
// back to slog.Default().
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: componentLogger(logger, "file_store")}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Load reads and decodes the file. Blank lines are ignored; malformed lines
// are logged and skipped so one corrupt record cannot block the rest.
func (s *FileStore) Load(ctx context.Context) ([]domain.Train, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("repo.FileStore.Load: %w", err)
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, neverSaved("repo.FileStore.Load")
	}
	if err != nil {
		return nil, fmt.Errorf("repo.FileStore.Load: %w", err)
	}

	trains := []domain.Train{}
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		t, err := DecodeLine(line)
		if err != nil {
			s.logger.Warn("skipping malformed train line",
				slog.String("path", s.path),
				slog.Int("line", i+1),
				slog.String("error", err.Error()),
			)
			continue
		}
		trains = append(trains, t)
	}
	return trains, nil
}

// Save encodes every train and atomically replaces the file, writing to a
// temporary sibling first so a failed write never truncates the old data.
func (s *FileStore) Save(ctx context.Context, trains []domain.Train) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("repo.FileStore.Save: %w", err)
	}

	var b strings.Builder
	for _, t := range trains {
		line, err := EncodeLine(t)
		if err != nil {
			return fmt.Errorf("repo.FileStore.Save: %w", err)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("repo.FileStore.Save: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("repo.FileStore.Save: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("repo.FileStore.Save: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("repo.FileStore.Save: close: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("repo.FileStore.Save: rename: %w", err)
	}
	return nil
}

// EncodeLine renders one train in the file format. Separators, backslashes
// and line breaks inside the id or a stop name are backslash-escaped, so every
// valid train can be written and read back unchanged.
func EncodeLine(t domain.Train) (string, error) {
	if t.IsZero() {
		return "", fmt.Errorf("%w: cannot encode an empty train", domain.ErrValidation)
	}

	fields := []string{idEscaper.Replace(t.ID()), stopEscaper.Replace(t.Start().Name()), stopEscaper.Replace(t.End().Name())}
	if mids := t.Intermediates(); len(mids) > 0 {
		names := make([]string, len(mids))
		for i, s := range mids {
			names[i] = stopEscaper.Replace(s.Name())
		}
		fields = append(fields, strings.Join(names, stopSep))
	}
	return strings.Join(fields, fieldSep), nil
}

// DecodeLine parses one line of the file format. A line with other than 3 or
// 4 fields, a dangling escape, or a train that does not validate fails with
// domain.ErrValidation.
func DecodeLine(line string) (domain.Train, error) {
	fields := splitUnescaped(line, fieldSep[0])
	if len(fields) != 3 && len(fields) != 4 {
		return domain.Train{}, fmt.Errorf("%w: expected 3 or 4 fields, got %d", domain.ErrValidation, len(fields))
	}

	names := []string{fields[1], fields[2]}
	if len(fields) == 4 && strings.TrimSpace(fields[3]) != "" {
		names = append(names, splitUnescaped(fields[3], stopSep[0])...)
	}
	for i, n := range names {
		v, err := unescape(n)
		if err != nil {
			return domain.Train{}, err
		}
		names[i] = v
	}
	id, err := unescape(fields[0])
	if err != nil {
		return domain.Train{}, err
	}

	start, err := domain.NewStop(names[0])
	if err != nil {
		return domain.Train{}, fmt.Errorf("start: %w", err)
	}
	end, err := domain.NewStop(names[1])
	if err != nil {
		return domain.Train{}, fmt.Errorf("end: %w", err)
	}
	mids, err := domain.NewStops(names[2:]...)
	if err != nil {
		return domain.Train{}, fmt.Errorf("intermediate %w", err)
	}

	return domain.NewTrainFromEndpoints(id, start, end, mids)
}

var (
	// Ids never sit in the stop list, so commas in them stay readable.
	idEscaper   = strings.NewReplacer(`\`, `\\`, fieldSep, `\`+fieldSep, "\n", `\n`, "\r", `\r`)
	stopEscaper = strings.NewReplacer(`\`, `\\`, fieldSep, `\`+fieldSep, stopSep, `\`+stopSep, "\n", `\n`, "\r", `\r`)
)

// splitUnescaped splits s on sep, ignoring separators preceded by a
// backslash. Escapes are left in place for unescape.
func splitUnescaped(s string, sep byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		i++
		if i == len(s) {
			return "", fmt.Errorf("%w: dangling escape in %q", domain.ErrValidation, s)
		}
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}
