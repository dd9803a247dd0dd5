package folio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(DefaultConfig())
	s.AddMapping(SymbolMapping{OldSymbol: "FB", NewSymbol: "META", Effective: day("2022-06-09"), Action: ActionRename})
	if err := s.AddSnapshot(snap("ira", "2025-01-31", pos("AAPL", 100, 150), pos("MSFT", 50, 400))); err != nil {
		t.Fatal(err)
	}
	s.AddTransactions(
		Transaction{Account: "ira", Date: day("2025-01-10"), Type: TxBuy, Symbol: "AAPL", Quantity: Q(100), Price: NO(150), Amount: NO(15000)},
		Transaction{Account: "ira", Date: day("2025-01-15"), Type: TxDeposit, Amount: NO(5000)},
	)
	if _, err := s.LotBook().CreateLot("ira", "AAPL", Q(100), day("2025-01-10"), USD(15000)); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestEncodeStore_RoundTrip(t *testing.T) {
	s := testStore(t)

	var buf bytes.Buffer
	if err := EncodeStore(&buf, s); err != nil {
		t.Fatalf("EncodeStore: %v", err)
	}

	decoded, err := DecodeStore(&buf, DefaultConfig())
	if err != nil {
		t.Fatalf("DecodeStore: %v", err)
	}

	if got := decoded.Snapshots("ira"); len(got) != 1 || len(got[0].Positions) != 2 {
		t.Errorf("snapshots did not survive: %+v", got)
	}
	if got := decoded.Transactions(); len(got) != 2 || !got[0].Equal(s.Transactions()[0]) {
		t.Errorf("transactions did not survive: %+v", got)
	}
	if got := decoded.Mappings().All(); len(got) != 1 || got[0].NewSymbol != "META" {
		t.Errorf("mappings did not survive: %+v", got)
	}
	lots := decoded.LotBook().Lots(NewSecurityID("ira", "AAPL"))
	if len(lots) != 1 {
		t.Fatalf("lots did not survive: %+v", lots)
	}
	if lots[0].Status != LotOpen || !lots[0].Remaining.Equal(Q(100)) {
		t.Errorf("lot state changed: %s remaining %s", lots[0].Status, lots[0].Remaining)
	}
}

// The encoding is deterministic: the same store always produces the same
// bytes, so store files diff cleanly under version control.
func TestEncodeStore_Deterministic(t *testing.T) {
	s := testStore(t)

	var a, b bytes.Buffer
	if err := EncodeStore(&a, s); err != nil {
		t.Fatal(err)
	}
	if err := EncodeStore(&b, s); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("two encodings of one store differ")
	}

	// And a decode/encode cycle reproduces the bytes.
	decoded, err := DecodeStore(bytes.NewReader(a.Bytes()), DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	var c bytes.Buffer
	if err := EncodeStore(&c, decoded); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), c.Bytes()) {
		t.Errorf("re-encoding differs:\n%s\nvs\n%s", a.String(), c.String())
	}
}

func TestDecodeStore_Errors(t *testing.T) {
	t.Run("unknown record kind", func(t *testing.T) {
		in := strings.NewReader(`{"record":"trade","foo":1}`)
		if _, err := DecodeStore(in, DefaultConfig()); err == nil {
			t.Error("unknown kind accepted")
		}
	})
	t.Run("malformed line", func(t *testing.T) {
		in := strings.NewReader(`{"record":`)
		if _, err := DecodeStore(in, DefaultConfig()); err == nil {
			t.Error("malformed line accepted")
		}
	})
	t.Run("empty lines are fine", func(t *testing.T) {
		in := strings.NewReader("\n\n")
		s, err := DecodeStore(in, DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		if len(s.Accounts()) != 0 {
			t.Error("empty input produced accounts")
		}
	})
}

func TestLoadSaveStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "folio.jsonl")

	// A missing file is an empty store, not an error.
	s, err := LoadStore(path, DefaultConfig())
	if err != nil {
		t.Fatalf("LoadStore on missing file: %v", err)
	}
	if len(s.Accounts()) != 0 {
		t.Fatal("missing file produced a non-empty store")
	}

	s = testStore(t)
	if err := SaveStore(path, s); err != nil {
		t.Fatalf("SaveStore: %v", err)
	}

	loaded, err := LoadStore(path, DefaultConfig())
	if err != nil {
		t.Fatalf("LoadStore: %v", err)
	}
	if got := loaded.Snapshots("ira"); len(got) != 1 {
		t.Errorf("loaded snapshots = %d, want 1", len(got))
	}

	// No leftover temporary files.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want just the store file", len(entries))
	}
}
