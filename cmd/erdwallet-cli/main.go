// erdwallet-cli manages erd keys and signs and broadcasts transactions
// through a network proxy.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/Klingon-tech/erdwallet/config"
	"github.com/Klingon-tech/erdwallet/internal/log"
	"github.com/Klingon-tech/erdwallet/internal/outbox"
	"github.com/Klingon-tech/erdwallet/internal/proxy"
	"github.com/Klingon-tech/erdwallet/internal/storage"
	"github.com/Klingon-tech/erdwallet/internal/wallet"
	"github.com/Klingon-tech/erdwallet/pkg/tx"
	"golang.org/x/term"
)

// env carries the resolved configuration into each command.
type env struct {
	cfg    *config.Config
	client *proxy.Client
}

func main() {
	flags, err := config.ParseFlags(os.Args[1:])
	if errors.Is(err, config.ErrHelp) {
		usage()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		usage()
		os.Exit(1)
	}
	if flags.Version {
		fmt.Println("erdwallet-cli version", config.Version)
		return
	}
	if len(flags.Args) == 0 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fatal("%v", err)
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
		fatal("init logging: %v", err)
	}
	log.CLI.Debug().
		Str("network", string(cfg.Network)).
		Str("proxy", cfg.Proxy.URL).
		Str("datadir", cfg.DataDir).
		Msg("Configuration loaded")

	client := proxy.NewWithTimeout(cfg.Proxy.URL, cfg.Proxy.Timeout)
	client.SetRateLimit(cfg.Proxy.RateLimit)
	e := &env{cfg: cfg, client: client}

	cmd := flags.Args[0]
	cmdArgs := flags.Args[1:]

	switch cmd {
	case "mnemonic":
		cmdMnemonic()
	case "derive":
		cmdDerive(cmdArgs)
	case "address":
		cmdAddress(cmdArgs)
	case "validate":
		cmdValidate(cmdArgs)
	case "wallet":
		cmdWallet(e, cmdArgs)
	case "keyfile":
		cmdKeyFile(e, cmdArgs)
	case "pem":
		cmdPEM(e, cmdArgs)
	case "tx":
		cmdTx(e, cmdArgs)
	case "account":
		cmdAccount(e, cmdArgs)
	case "network-config":
		cmdNetworkConfig(e)
	case "history":
		cmdHistory(e, cmdArgs)
	case "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: erdwallet-cli [global flags] <command> [flags]\n\n")
	config.PrintGlobalUsage(os.Stderr)
	fmt.Fprintf(os.Stderr, `
Commands:
  mnemonic                        Generate a 24-word mnemonic
  derive --mnemonic "..." [--index N]
                                  Derive the key pair of an account
  address <hex|bech32>            Convert between hex and bech32 addresses
  validate <bech32>               Check a bech32 address

  wallet create --name <n>        Create a vault with a new mnemonic
  wallet import --name <n> --mnemonic "..."
                                  Import a mnemonic into a vault
  wallet list                     List vaults
  wallet address --wallet <w> [--new] [--index N] [--label l]
                                  List or derive vault accounts

  keyfile export --wallet <w> [--index N] --out <file.json>
                                  Export an account as a JSON key file
  keyfile show <file.json>        Show a key file's address
  pem export --wallet <w> [--index N] --out <file.pem>
                                  Export an account as a PEM file
  pem show <file.pem> [--index N] Show a PEM key's address

  tx sign <key flags> --receiver <addr> --value <amount> [opts]
                                  Sign a transaction and print its JSON
  tx send <key flags> --receiver <addr> --value <amount> [opts]
                                  Sign, broadcast and journal a transaction
  tx send --file <signed.json>    Broadcast a previously signed transaction
  tx status <txHash>              Refresh a journaled transaction's status

  account <bech32>                Show nonce and balance
  network-config                  Show the network's chain rules
  history [--sender <bech32>] [--limit N] [--offset N] [--refresh] [--clear]
                                  List journaled transactions

Key flags (one of):
  --wallet <w> [--index N]        Vault account (password prompted)
  --keyfile <file.json>           JSON key file (password prompted)
  --pem <file.pem> [--pem-index N]
                                  PEM key file
`)
}

// keystore opens the vault directory.
func (e *env) keystore() *wallet.Keystore {
	ks, err := wallet.NewKeystore(e.cfg.KeystoreDir())
	if err != nil {
		fatal("open keystore: %v", err)
	}
	return ks
}

// openOutbox opens the journal database. The returned func closes it.
func (e *env) openOutbox() (*outbox.Store, func()) {
	db, err := storage.NewBadger(e.cfg.OutboxDir())
	if err != nil {
		fatal("open outbox: %v", err)
	}
	return outbox.NewStore(db), func() {
		if err := db.Close(); err != nil {
			log.CLI.Warn().Err(err).Msg("Closing outbox")
		}
	}
}

// rules returns the chain rules, from the proxy unless offline.
func (e *env) rules(ctx context.Context, offline bool) tx.NetworkConfig {
	if offline {
		rules, err := config.NetworkRules(e.cfg.Network)
		if err != nil {
			fatal("%v", err)
		}
		return rules
	}
	rules, err := e.client.GetNetworkConfig(ctx)
	if err != nil {
		fatal("fetch network config (use --offline to sign without the proxy): %v", err)
	}
	return rules
}

// stdin is shared so piped passwords are read line by line.
var stdin = bufio.NewReader(os.Stdin)

// readPassword prompts on the terminal, or reads one line from stdin when
// it is not a terminal.
func readPassword(prompt string) ([]byte, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		line, err := stdin.ReadString('\n')
		if err != nil && line == "" {
			return nil, err
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// readNewPassword prompts twice and requires both entries to match.
func readNewPassword() []byte {
	password, err := readPassword("Enter password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if !term.IsTerminal(int(syscall.Stdin)) {
		return password
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fatal("read password: %v", err)
	}
	if string(password) != string(confirm) {
		fatal("passwords do not match")
	}
	return password
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
