package inventory

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"toolcrib/internal/journal"
	"toolcrib/internal/store"
	"toolcrib/pkg/domain"
	"toolcrib/testutil"
)

const toolsCSV = "WZ.Nr.;Name;Status;Pos.\r\n" +
	"101;Fräser D10;GERÜSTET;12\r\n" +
	"102;Bohrer D5;gerüstet;3,5\r\n" +
	"103;Gewindebohrer M6;frei;1\r\n" +
	"104;Reibahle D8;GERÜSTET;A7\r\n" +
	"105;Senker 90;GERÜSTET;3\r\n"

const fixturesCSV = "ID;Name;Kasten;Lade;Fach;Bestand;MinBestand\r\n" +
	"R1;Spannzange ER32;1;2;3;4;2\r\n" +
	"R2;Spannpratze;1;2;5;0;1\r\n" +
	"R3;Parallelunterlage;2;1;1;1;0\r\n"

type fixture struct {
	svc     *Service
	store   *store.Store
	journal *journal.Memory
	dir     string
	logs    *bytes.Buffer
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFile(t, dir, store.DefaultToolsFile, []byte(toolsCSV))
	testutil.WriteFile(t, dir, store.FixtureFile, []byte(fixturesCSV))
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	st := store.New(store.DefaultPaths(filepath.Join(dir, store.DefaultToolsFile), filepath.Join(dir, store.DefaultUsersFile)), store.WithLogger(logger))
	j := journal.NewMemory()
	svc := NewService(st, append([]Option{WithJournal(j), WithLogger(logger)}, opts...)...)
	return fixture{svc: svc, store: st, journal: j, dir: dir, logs: &logs}
}

func toolIDs(tools []domain.Tool) []string {
	ids := make([]string, len(tools))
	for i, t := range tools {
		ids[i] = t.ID
	}
	return ids
}
