package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tendermint/tendermint/libs/log"

	otx "github.com/secureonelabs/opentxs-sub000"
	"github.com/secureonelabs/opentxs-sub000/crypto"
	"github.com/secureonelabs/opentxs-sub000/errors"
	"github.com/secureonelabs/opentxs-sub000/notary"
	"github.com/secureonelabs/opentxs-sub000/store"
	"github.com/secureonelabs/opentxs-sub000/x/account"
	"github.com/secureonelabs/opentxs-sub000/x/cron"
	"github.com/secureonelabs/opentxs-sub000/x/dividend"
	"github.com/secureonelabs/opentxs-sub000/x/exchange"
	"github.com/secureonelabs/opentxs-sub000/x/funds"
	"github.com/secureonelabs/opentxs-sub000/x/ledger"
	"github.com/secureonelabs/opentxs-sub000/x/nym"
	"github.com/secureonelabs/opentxs-sub000/x/process"
	"github.com/secureonelabs/opentxs-sub000/x/recurring"
	"github.com/secureonelabs/opentxs-sub000/x/statement"
	"github.com/secureonelabs/opentxs-sub000/x/token"
	"github.com/secureonelabs/opentxs-sub000/x/transfer"
	"github.com/secureonelabs/opentxs-sub000/x/utils"
)

var (
	varGenesis = flag.String("genesis", "genesis.json", "path to the genesis options file")
	varSeed    = flag.String("seed", "", "hex encoded 32 byte server key seed, random if empty")
)

func helpMessage() {
	fmt.Println("notaryd")
	fmt.Println("        Transaction notary server")
	fmt.Println("")
	fmt.Println("help    Print this message")
	fmt.Println("start   Read requests from stdin, write responses to stdout")
	flag.PrintDefaults()
}

func main() {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr)).
		With("module", "notaryd")

	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	switch cmd := flag.Arg(0); cmd {
	case "help":
		helpMessage()
	case "start":
		if err := run(logger, *varGenesis, *varSeed, os.Stdin, os.Stdout); err != nil {
			logger.Error("notaryd failed", "err", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		helpMessage()
		os.Exit(1)
	}
}

// genesis is the on-disk startup state: identities, instruments, accounts
// and the server number floor.
type genesis struct {
	NotaryID string      `json:"notary_id"`
	Options  otx.Options `json:"options"`
}

func loadGenesis(path string) (*genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read genesis file")
	}
	var gen genesis
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrap(err, "cannot parse genesis file")
	}
	return &gen, nil
}

func serverKey(seed string) (*crypto.PrivateKey, error) {
	if seed == "" {
		return crypto.GenPrivKeyEd25519(), nil
	}
	raw, err := hex.DecodeString(seed)
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode seed")
	}
	if len(raw) != 32 {
		return nil, errors.Wrapf(errors.ErrInput, "seed size: %d", len(raw))
	}
	return crypto.PrivKeyEd25519FromSeed(raw), nil
}

// buildEngine wires every settlement route into one dispatcher.
func buildEngine(key *crypto.PrivateKey, logger log.Logger) *notary.Engine {
	accounts := account.NewController()
	ledgers := ledger.NewController()
	nyms := nym.NewController()
	scheduler := cron.NewScheduler()
	verifier := statement.NewVerifier(accounts, ledgers, nyms)
	numbers := ledger.NewNumberSource()
	adapter := token.NewAdapter(accounts, token.NewMintSigner(key))
	auth := notary.Authenticate()

	r := notary.NewRouter()
	transfer.RegisterRoutes(r, auth, accounts, ledgers, verifier)
	funds.RegisterRoutes(r, auth, accounts, nyms, verifier, adapter, numbers, key)
	dividend.RegisterRoutes(r, auth, accounts, ledgers, verifier, numbers)
	exchange.RegisterRoutes(r, auth, accounts, verifier)
	recurring.RegisterRoutes(r, auth, accounts, ledgers, nyms, verifier, scheduler, numbers)
	process.RegisterRoutes(r, auth, accounts, ledgers, nyms, verifier, numbers)

	stack := notary.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewSavepoint().OnDeliver(),
	).WithHandler(r)

	notifier := notary.FuncNotifier(func(n otx.Address) {
		logger.Info("mailbox changed", "nym", n)
	})
	return notary.NewEngine(stack, key, notifier, logger)
}

func run(logger log.Logger, genesisPath, seed string, in io.Reader, out io.Writer) error {
	gen, err := loadGenesis(genesisPath)
	if err != nil {
		return err
	}
	key, err := serverKey(seed)
	if err != nil {
		return err
	}
	logger.Info("starting notary",
		"id", gen.NotaryID,
		"pubkey", hex.EncodeToString(key.PublicKey()))

	db := store.MemStore()
	inits := []otx.Initializer{
		nym.Initializer{},
		account.Initializer{},
		ledger.Initializer{},
	}
	for _, init := range inits {
		if err := init.FromGenesis(gen.Options, db); err != nil {
			return errors.Wrap(err, "genesis")
		}
	}

	engine := buildEngine(key, logger)
	ctx := otx.WithNotaryID(otx.WithLogger(context.Background(), logger), gen.NotaryID)

	enc := json.NewEncoder(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := engine.ProcessRequest(ctx, db, line)
		if err := enc.Encode(resp); err != nil {
			return errors.Wrap(err, "cannot write response")
		}
	}
	return scanner.Err()
}
