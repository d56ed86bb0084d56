package wallet

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const (
	abandonMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	abandonAccount0 = "erd1sqhjrtmsn5yjk6w85099p8v0ly0g8z9pxeqe5dvu5rlf2n7vq3vqytny9g"
	abandonAccount1 = "erd1xkrttq324elvla4kk83r6wns35cjyqw7vg5tmdfn7qmrc2drd7qswlwt6z"
)

func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	dir := t.TempDir()
	ks, err := NewKeystore(dir)
	if err != nil {
		t.Fatalf("NewKeystore() error: %v", err)
	}
	return ks
}

func testSeedBytes(t *testing.T) []byte {
	t.Helper()
	seed, err := SeedFromMnemonic(abandonMnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	return seed
}

func TestKeystore_CreateAndLoad(t *testing.T) {
	ks := testKeystore(t)
	seed := testSeedBytes(t)
	password := []byte("test-password")

	if err := ks.Create("mywallet", seed, password, fastParams()); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	loaded, err := ks.Load("mywallet", password)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !bytes.Equal(loaded, seed) {
		t.Error("loaded seed does not match original")
	}
}

func TestKeystore_CreateRecordsDefaultAccount(t *testing.T) {
	ks := testKeystore(t)
	if err := ks.Create("w", testSeedBytes(t), []byte("p"), fastParams()); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	accounts, err := ks.ListAccounts("w")
	if err != nil {
		t.Fatalf("ListAccounts() error: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(accounts))
	}
	want := AccountEntry{Index: 0, Name: "default", Address: abandonAccount0}
	if accounts[0] != want {
		t.Errorf("account = %+v, want %+v", accounts[0], want)
	}
}

func TestKeystore_CreateDuplicate(t *testing.T) {
	ks := testKeystore(t)
	seed := testSeedBytes(t)

	if err := ks.Create("dup", seed, []byte("pass"), fastParams()); err != nil {
		t.Fatalf("first Create() error: %v", err)
	}
	err := ks.Create("dup", seed, []byte("pass"), fastParams())
	if !errors.Is(err, ErrWalletExists) {
		t.Errorf("second Create() error = %v, want ErrWalletExists", err)
	}
}

func TestKeystore_CreateBadSeed(t *testing.T) {
	ks := testKeystore(t)
	err := ks.Create("short", make([]byte, 32), []byte("p"), fastParams())
	if !errors.Is(err, ErrCannotDeriveKeys) {
		t.Errorf("Create() error = %v, want ErrCannotDeriveKeys", err)
	}
	if names, _ := ks.List(); len(names) != 0 {
		t.Errorf("no wallet file should be written, got %v", names)
	}
}

func TestKeystore_InvalidName(t *testing.T) {
	ks := testKeystore(t)
	seed := testSeedBytes(t)

	for _, name := range []string{"", "..", "a/b", `a\b`} {
		if err := ks.Create(name, seed, []byte("p"), fastParams()); err == nil {
			t.Errorf("Create(%q) should fail", name)
		}
	}
}

func TestKeystore_LoadWrongPassword(t *testing.T) {
	ks := testKeystore(t)
	seed := testSeedBytes(t)

	if err := ks.Create("wallet", seed, []byte("correct"), fastParams()); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	_, err := ks.Load("wallet", []byte("wrong"))
	if !errors.Is(err, ErrWrongPassword) {
		t.Errorf("Load() error = %v, want ErrWrongPassword", err)
	}
}

func TestKeystore_LoadNonexistent(t *testing.T) {
	ks := testKeystore(t)

	_, err := ks.Load("nope", []byte("pass"))
	if !errors.Is(err, ErrWalletNotFound) {
		t.Errorf("Load() error = %v, want ErrWalletNotFound", err)
	}
}

func TestKeystore_List(t *testing.T) {
	ks := testKeystore(t)
	seed := testSeedBytes(t)

	names, err := ks.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("empty keystore should list nothing, got %v", names)
	}

	ks.Create("beta", seed, []byte("p"), fastParams())
	ks.Create("alpha", seed, []byte("p"), fastParams())
	os.WriteFile(filepath.Join(ks.Dir(), "notes.txt"), []byte("x"), 0600)

	names, err = ks.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("List() = %v, want [alpha beta]", names)
	}
}

func TestKeystore_Delete(t *testing.T) {
	ks := testKeystore(t)
	ks.Create("todelete", testSeedBytes(t), []byte("p"), fastParams())

	if err := ks.Delete("todelete"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	names, _ := ks.List()
	if len(names) != 0 {
		t.Errorf("wallet should be gone, got %v", names)
	}
}

func TestKeystore_DeleteNonexistent(t *testing.T) {
	ks := testKeystore(t)

	if err := ks.Delete("ghost"); !errors.Is(err, ErrWalletNotFound) {
		t.Errorf("Delete() error = %v, want ErrWalletNotFound", err)
	}
}

func TestKeystore_DeriveAccount(t *testing.T) {
	ks := testKeystore(t)
	password := []byte("p")
	ks.Create("wallet", testSeedBytes(t), password, fastParams())

	entry, err := ks.DeriveAccount("wallet", password, 1, "savings")
	if err != nil {
		t.Fatalf("DeriveAccount() error: %v", err)
	}
	if entry.Address != abandonAccount1 {
		t.Errorf("address = %s, want %s", entry.Address, abandonAccount1)
	}

	// Same index again keeps the first label.
	again, err := ks.DeriveAccount("wallet", password, 1, "other")
	if err != nil {
		t.Fatalf("DeriveAccount() again error: %v", err)
	}
	if again.Name != "savings" {
		t.Errorf("name = %q, want savings", again.Name)
	}

	next, err := ks.NextAccountIndex("wallet")
	if err != nil {
		t.Fatalf("NextAccountIndex() error: %v", err)
	}
	if next != 2 {
		t.Errorf("NextAccountIndex() = %d, want 2", next)
	}
}

func TestKeystore_DeriveAccountWrongPassword(t *testing.T) {
	ks := testKeystore(t)
	ks.Create("wallet", testSeedBytes(t), []byte("p"), fastParams())

	if _, err := ks.DeriveAccount("wallet", []byte("q"), 1, ""); !errors.Is(err, ErrWrongPassword) {
		t.Errorf("DeriveAccount() error = %v, want ErrWrongPassword", err)
	}
}

func TestKeystore_AddAccount(t *testing.T) {
	ks := testKeystore(t)
	ks.Create("wallet", testSeedBytes(t), []byte("p"), fastParams())

	err := ks.AddAccount("wallet", AccountEntry{Index: 5, Name: "watch", Address: abandonAccount1})
	if err != nil {
		t.Fatalf("AddAccount() error: %v", err)
	}

	accounts, err := ks.ListAccounts("wallet")
	if err != nil {
		t.Fatalf("ListAccounts() error: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(accounts))
	}
	if accounts[1].Index != 5 || accounts[1].Name != "watch" {
		t.Errorf("accounts[1] = %+v", accounts[1])
	}
}

func TestKeystore_AddAccountDuplicateIndex(t *testing.T) {
	ks := testKeystore(t)
	ks.Create("wallet", testSeedBytes(t), []byte("p"), fastParams())

	// Index 0 already holds abandonAccount0.
	err := ks.AddAccount("wallet", AccountEntry{Index: 0, Name: "second", Address: abandonAccount1})
	if err == nil {
		t.Error("should reject a different address at an existing index")
	}

	// Identical entry is idempotent.
	if err := ks.AddAccount("wallet", AccountEntry{Index: 0, Name: "default", Address: abandonAccount0}); err != nil {
		t.Errorf("identical AddAccount() error: %v", err)
	}
}

func TestKeystore_AddAccountBadAddress(t *testing.T) {
	ks := testKeystore(t)
	ks.Create("wallet", testSeedBytes(t), []byte("p"), fastParams())

	if err := ks.AddAccount("wallet", AccountEntry{Index: 1, Address: "abcdef"}); err == nil {
		t.Error("AddAccount() should reject a non-bech32 address")
	}
}

func TestKeystore_FilePermissions(t *testing.T) {
	ks := testKeystore(t)
	ks.Create("secure", testSeedBytes(t), []byte("p"), fastParams())

	info, err := os.Stat(filepath.Join(ks.Dir(), "secure.wallet"))
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0077 != 0 {
		t.Errorf("wallet file should be 0600, got %o", perm)
	}
}

func TestKeystore_UnsupportedVersion(t *testing.T) {
	ks := testKeystore(t)
	path := filepath.Join(ks.Dir(), "old.wallet")
	if err := os.WriteFile(path, []byte(`{"version":7}`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ks.ListAccounts("old"); err == nil {
		t.Error("ListAccounts() should reject an unknown version")
	}
}

func TestKeystore_FullFlow(t *testing.T) {
	ks := testKeystore(t)
	password := []byte("strong-password")

	mnemonic, err := GenerateMnemonic()
	if err != nil {
		t.Fatalf("GenerateMnemonic() error: %v", err)
	}
	seed, err := SeedFromMnemonic(mnemonic, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}

	if err := ks.Create("main", seed, password, fastParams()); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	loaded, err := ks.Load("main", password)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	_, pub, err := DeriveKeysFromSeed(loaded, 0)
	if err != nil {
		t.Fatalf("DeriveKeysFromSeed() error: %v", err)
	}
	_, wantPub, err := DeriveKeys(mnemonic, 0)
	if err != nil {
		t.Fatalf("DeriveKeys() error: %v", err)
	}
	if !bytes.Equal(pub, wantPub) {
		t.Error("key from stored seed differs from key from mnemonic")
	}
}
