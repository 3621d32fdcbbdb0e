package migrations

import (
	"testing"
	"testing/fstest"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"001_learners.sql", 1, false},
		{"012_add_index.sql", 12, false},
		{"README.sql", 0, true},
		{"abc_learners.sql", 0, true},
		{"000_zero.sql", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseVersion(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVersion(%q) error = %v; wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseVersion(%q) = %d; want %d", tt.name, got, tt.want)
		}
	}
}

func TestPending(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/010_index.sql":    {Data: []byte("CREATE INDEX x;")},
		"sql/002_second.sql":   {Data: []byte("SELECT 2;")},
		"sql/001_first.sql":    {Data: []byte("SELECT 1;")},
		"sql/notes.sql":        {Data: []byte("--")},
		"sql/003_readme.txt":   {Data: []byte("ignored")},
		"sql/old/004_skip.sql": {Data: []byte("ignored")},
	}

	all, err := Pending(fsys, "sql", 0)
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	want := []int{1, 2, 10}
	if len(all) != len(want) {
		t.Fatalf("Pending() = %d migrations; want %d", len(all), len(want))
	}
	for i, m := range all {
		if m.Version != want[i] {
			t.Errorf("Pending()[%d].Version = %d; want %d", i, m.Version, want[i])
		}
	}
	if all[0].SQL != "SELECT 1;" {
		t.Errorf("Pending()[0].SQL = %q", all[0].SQL)
	}

	rest, err := Pending(fsys, "sql", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 1 || rest[0].Name != "010_index.sql" {
		t.Errorf("Pending(after 2) = %+v", rest)
	}
}

func TestPending_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"1_b.sql":   {Data: []byte("SELECT 1;")},
	}
	if _, err := Pending(fsys, ".", 0); err == nil {
		t.Error("expected error for duplicate versions")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	sqlite, err := Pending(FS, ".", 0)
	if err != nil {
		t.Fatalf("Pending(FS) error = %v", err)
	}
	postgres, err := Pending(PostgresFS, "postgres", 0)
	if err != nil {
		t.Fatalf("Pending(PostgresFS) error = %v", err)
	}
	if len(sqlite) != len(postgres) {
		t.Errorf("sqlite has %d migrations, postgres %d; schemas must stay in step", len(sqlite), len(postgres))
	}
	for i := range sqlite {
		if sqlite[i].Name != postgres[i].Name {
			t.Errorf("migration %d: sqlite %s, postgres %s", i, sqlite[i].Name, postgres[i].Name)
		}
	}
}
