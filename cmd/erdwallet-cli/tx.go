package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/Klingon-tech/erdwallet/internal/log"
	"github.com/Klingon-tech/erdwallet/internal/outbox"
	"github.com/Klingon-tech/erdwallet/internal/wallet"
	"github.com/Klingon-tech/erdwallet/pkg/crypto"
	"github.com/Klingon-tech/erdwallet/pkg/tx"
	"github.com/Klingon-tech/erdwallet/pkg/types"
)

// commandTimeout bounds the proxy calls of one command.
const commandTimeout = 2 * time.Minute

// ── tx ──────────────────────────────────────────────────────────────────

func cmdTx(e *env, args []string) {
	if len(args) < 1 {
		fatal("Usage: erdwallet-cli tx <sign|send|status> [flags]")
	}
	switch args[0] {
	case "sign":
		cmdTxSign(e, args[1:])
	case "send":
		cmdTxSend(e, args[1:])
	case "status":
		cmdTxStatus(e, args[1:])
	default:
		fatal("Unknown tx command: %s\nUsage: erdwallet-cli tx <sign|send|status> [flags]", args[0])
	}
}

// txFlags are the flags shared by tx sign and tx send.
type txFlags struct {
	fs *flag.FlagSet

	wallet   *string
	index    *accountIndex
	keyfile  *string
	pemFile  *string
	pemIndex *int

	receiver *string
	value    *string
	egld     *string
	nonce    *int64
	data     *string
	gasPrice *uint64
	gasLimit *uint64
	offline  *bool
}

func newTxFlags(name string) *txFlags {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	return &txFlags{
		fs:       fs,
		wallet:   fs.String("wallet", "", "Vault name"),
		index:    indexFlag(fs, "index", "Vault account index"),
		keyfile:  fs.String("keyfile", "", "JSON key file"),
		pemFile:  fs.String("pem", "", "PEM key file"),
		pemIndex: fs.Int("pem-index", 0, "Key index within the PEM file"),
		receiver: fs.String("receiver", "", "Receiver address (bech32)"),
		value:    fs.String("value", "", "Amount in base units"),
		egld:     fs.String("amount", "", "Amount in whole coins (e.g. 1.5)"),
		nonce:    fs.Int64("nonce", -1, "Sender nonce (default: read from the proxy)"),
		data:     fs.String("data", "", "Data payload"),
		gasPrice: fs.Uint64("gas-price", 0, "Gas price (default: network minimum)"),
		gasLimit: fs.Uint64("gas-limit", 0, "Gas limit (default: computed from data)"),
		offline:  fs.Bool("offline", false, "Use built-in chain rules; requires --nonce"),
	}
}

// signingSeed loads the key selected by the key flags.
func (f *txFlags) signingSeed(e *env) []byte {
	sources := 0
	for _, s := range []string{*f.wallet, *f.keyfile, *f.pemFile} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		fatal("choose exactly one of --wallet, --keyfile or --pem")
	}

	switch {
	case *f.wallet != "":
		return unlockAccount(e, *f.wallet, f.index.v)
	case *f.keyfile != "":
		password, err := readPassword("Key file password: ")
		if err != nil {
			fatal("read password: %v", err)
		}
		defer zero(password)
		seed, err := wallet.LoadKeyFile(*f.keyfile, string(password))
		if err != nil {
			fatal("load key file: %v", err)
		}
		return seed
	default:
		seed, err := wallet.LoadPEM(*f.pemFile, *f.pemIndex)
		if err != nil {
			fatal("load pem: %v", err)
		}
		return seed
	}
}

// amount resolves --value or --amount into base units.
func (f *txFlags) amount() *big.Int {
	switch {
	case *f.value != "" && *f.egld != "":
		fatal("use either --value or --amount, not both")
	case *f.value != "":
		v, ok := new(big.Int).SetString(*f.value, 10)
		if !ok || v.Sign() < 0 {
			fatal("invalid --value %q", *f.value)
		}
		return v
	case *f.egld != "":
		v, err := tx.ParseAmount(*f.egld)
		if err != nil {
			fatal("%v", err)
		}
		return v
	}
	return new(big.Int)
}

// build signs the transaction described by the flags.
func (f *txFlags) build(ctx context.Context, e *env) *tx.SignedTransaction {
	if *f.receiver == "" {
		fatal("--receiver is required")
	}
	receiver, err := types.AddressFromBech32(*f.receiver)
	if err != nil {
		fatal("receiver: %v", err)
	}
	if *f.offline && *f.nonce < 0 {
		fatal("--offline requires --nonce")
	}
	value := f.amount()

	seed := f.signingSeed(e)
	defer zero(seed)
	signer, err := crypto.PrivateKeyFromSeed(seed)
	if err != nil {
		fatal("%v", err)
	}
	defer signer.Zero()
	sender, err := types.AddressFromPubKey(signer.PublicKey())
	if err != nil {
		fatal("%v", err)
	}

	rules := e.rules(ctx, *f.offline)

	nonce := uint64(*f.nonce)
	if *f.nonce < 0 {
		acct, err := e.client.GetAccount(ctx, sender)
		if err != nil {
			fatal("fetch nonce: %v", err)
		}
		nonce = acct.Nonce
	}

	b := tx.NewBuilder(rules).
		WithNonce(nonce).
		WithValue(value).
		WithSender(sender).
		WithReceiver(receiver).
		WithData([]byte(*f.data))
	if *f.gasPrice != 0 {
		b = b.WithGasPrice(*f.gasPrice)
	}
	if *f.gasLimit != 0 {
		b = b.WithGasLimit(*f.gasLimit)
	}

	unsigned, err := b.Build()
	if err != nil {
		fatal("%v", err)
	}
	signed, err := unsigned.Sign(signer)
	if err != nil {
		fatal("%v", err)
	}
	txLog := log.WithChainID(rules.ChainID)
	txLog.Debug().
		Str("sender", sender.String()).
		Uint64("nonce", nonce).
		Uint64("gas_limit", unsigned.GasLimit).
		Msg("Transaction signed")
	return signed
}

func cmdTxSign(e *env, args []string) {
	f := newTxFlags("tx sign")
	out := f.fs.String("out", "", "Write the signed transaction to this file")
	f.fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	signed := f.build(ctx, e)
	payload, err := signed.Serialize()
	if err != nil {
		fatal("%v", err)
	}
	fmt.Fprintf(os.Stderr, "Max fee: %s\n", tx.FormatAmount(tx.MaxFee(signed.Transaction())))

	if *out != "" {
		if err := os.WriteFile(*out, []byte(payload+"\n"), 0644); err != nil {
			fatal("write %s: %v", *out, err)
		}
		fmt.Fprintf(os.Stderr, "Signed transaction written to %s\n", *out)
		return
	}
	fmt.Println(payload)
}

func cmdTxSend(e *env, args []string) {
	f := newTxFlags("tx send")
	file := f.fs.String("file", "", "Broadcast a signed transaction from this file")
	f.fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var signed *tx.SignedTransaction
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			fatal("read %s: %v", *file, err)
		}
		signed, err = tx.ParseSigned(data)
		if err != nil {
			fatal("%v", err)
		}
		log.Tx.Debug().Str("file", *file).Msg("Loaded signed transaction")
	} else {
		signed = f.build(ctx, e)
	}

	store, closeStore := e.openOutbox()
	defer closeStore()

	done := log.Benchmark("tx send")
	rec, err := outbox.NewSender(e.client, store).Send(ctx, signed)
	if err != nil {
		fatal("send: %v", err)
	}
	done()
	fmt.Printf("Transaction sent: %s\n", rec.TxHash)
	fmt.Printf("Nonce:  %d\n", rec.Nonce)
	fmt.Printf("Digest: %s\n", rec.Hash)
}

func cmdTxStatus(e *env, args []string) {
	if len(args) != 1 {
		fatal("Usage: erdwallet-cli tx status <txHash>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	store, closeStore := e.openOutbox()
	defer closeStore()

	rec, err := outbox.NewSender(e.client, store).Refresh(ctx, args[0])
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("%s  %s\n", rec.TxHash, rec.Status)
}

// ── account / network-config / history ──────────────────────────────────

func cmdAccount(e *env, args []string) {
	if len(args) != 1 {
		fatal("Usage: erdwallet-cli account <bech32>")
	}
	addr, err := types.AddressFromBech32(args[0])
	if err != nil {
		fatal("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	acct, err := e.client.GetAccount(ctx, addr)
	if err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Address: %s\n", acct.Address)
	fmt.Printf("Nonce:   %d\n", acct.Nonce)
	fmt.Printf("Balance: %s (%s)\n", tx.FormatAmount(acct.Balance), acct.Balance)
	if acct.Username != "" {
		fmt.Printf("Username: %s\n", acct.Username)
	}
}

func cmdNetworkConfig(e *env) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	rules, err := e.client.GetNetworkConfig(ctx)
	if err != nil {
		fatal("%v", err)
	}
	out, _ := json.MarshalIndent(rules, "", "  ")
	fmt.Println(string(out))
}

func cmdHistory(e *env, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	sender := fs.String("sender", "", "Only transactions from this address")
	limit := fs.Int("limit", 20, "Maximum entries")
	offset := fs.Int("offset", 0, "Entries to skip")
	refresh := fs.Bool("refresh", false, "Query the proxy for unfinished transactions first")
	wipe := fs.Bool("clear", false, "Delete the whole journal")
	fs.Parse(args)

	store, closeStore := e.openOutbox()
	defer closeStore()

	if *wipe {
		if err := store.Clear(); err != nil {
			fatal("%v", err)
		}
		fmt.Println("History cleared.")
		return
	}

	if *refresh {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		n, err := outbox.NewSender(e.client, store).RefreshPending(ctx, *sender)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: refresh incomplete: %v\n", err)
		}
		log.CLI.Debug().Int("updated", n).Msg("Refreshed pending transactions")
	}

	recs, total, err := store.List(*sender, *limit, *offset)
	if err != nil {
		fatal("%v", err)
	}
	if total == 0 {
		fmt.Println("No transactions sent yet.")
		return
	}
	for _, r := range recs {
		status := r.Status
		if status == "" {
			status = "-"
		}
		fmt.Printf("%s  %s  nonce=%d  %s  %s\n",
			r.SentAt.Local().Format("2006-01-02 15:04:05"), r.TxHash, r.Nonce, r.Sender, status)
	}
	fmt.Printf("(%d of %d)\n", len(recs), total)
}
