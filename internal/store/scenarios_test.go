package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/mrrcast/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "scenarios.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testParams() model.ParameterSet {
	return model.ParameterSet{
		KickOff:         time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		Price:           40,
		FreeTrialDays:   14,
		TrialToPaidRate: 0.25,
		ChurnRate:       0.05,
		Channels: []model.Channel{
			{Name: "SEM", Kind: model.ChannelTraffic, Initial: 100_000, Conversion: model.FlatSchedule(0.04), CPA: 26},
			{Name: "Affiliate", Kind: model.ChannelSubscriptions, Initial: 500, CPA: 30},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	p := testParams()

	saved, err := s.Save("base", p)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID == "" || saved.Fingerprint == "" {
		t.Fatalf("saved scenario missing id or fingerprint: %+v", saved)
	}

	got, err := s.Get("base")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != saved.ID {
		t.Fatalf("ID = %s, want %s", got.ID, saved.ID)
	}
	gotFP, err := got.Params.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	if gotFP != saved.Fingerprint {
		t.Fatal("stored parameters do not match the saved fingerprint")
	}
	if got.Params.Channels[1].Kind != model.ChannelSubscriptions {
		t.Fatalf("channel kind = %q", got.Params.Channels[1].Kind)
	}
}

func TestSaveReplacesByName(t *testing.T) {
	s := openTestStore(t)
	first, err := s.Save("base", testParams())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	p := testParams()
	p.Price = 49
	p.Channels = p.Channels[:1]
	second, err := s.Save("base", p)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("ID changed on update: %s -> %s", first.ID, second.ID)
	}

	n, err := s.Count()
	if err != nil || n != 1 {
		t.Fatalf("Count = %d, %v; want 1", n, err)
	}
	infos, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if infos[0].Price != 49 || len(infos[0].Channels) != 1 {
		t.Fatalf("List = %+v, want updated scenario with one channel", infos)
	}
}

func TestListOrdersByName(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{"growth", "base", "conservative"} {
		if _, err := s.Save(name, testParams()); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}
	infos, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 3 || infos[0].Name != "base" || infos[2].Name != "growth" {
		t.Fatalf("List = %+v", infos)
	}
	if got := infos[0].Channels; len(got) != 2 || got[0] != "SEM" || got[1] != "Affiliate" {
		t.Fatalf("channels = %v, want [SEM Affiliate]", got)
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Save("base", testParams()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete("base"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("base"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete("base"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestSaveRequiresName(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Save("", testParams()); err == nil {
		t.Fatal("expected an error for an empty name")
	}
}
