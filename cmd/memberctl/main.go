// Command memberctl is an operator tool for the member portal.
//
//	memberctl hash-password [-cost N]            < password
//	memberctl create-member -username u -email e < password
//
// create-member uses the same environment configuration as the API server.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"golang.org/x/crypto/bcrypt"

	"github.com/unique-meal/member-portal/internal/app/members"
	"github.com/unique-meal/member-portal/internal/bootstrap"
	platformclock "github.com/unique-meal/member-portal/internal/platform/clock"
	"github.com/unique-meal/member-portal/internal/platform/config"
	"github.com/unique-meal/member-portal/internal/platform/logging"
	"github.com/unique-meal/member-portal/internal/platform/password"
)

const usage = `usage:
  memberctl hash-password [-cost N]            (password on stdin)
  memberctl create-member -username u -email e (password on stdin)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "hash-password":
		err = hashPassword(args[1:], stdin, stdout)
	case "create-member":
		err = createMember(ctx, args[1:], stdin, stdout)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "memberctl %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

func hashPassword(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cost < bcrypt.MinCost || *cost > bcrypt.MaxCost {
		return fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	plain, err := readPassword(stdin)
	if err != nil {
		return err
	}
	hash, err := password.NewHasher(*cost).Hash(plain)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, hash)
	return err
}

func createMember(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("create-member", flag.ContinueOnError)
	username := fs.String("username", "", "member username")
	email := fs.String("email", "", "member email address")
	tier := fs.String("tier", "", "membership tier (defaults to DEFAULT_MEMBERSHIP_TIER)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if cfg.StorageBackend == config.BackendMemory {
		return errors.New("STORAGE_BACKEND=memory does not persist; choose postgres, sqlite or gorm-postgres")
	}

	plain, err := readPassword(stdin)
	if err != nil {
		return err
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.SetOutput(io.Discard)

	stores, err := bootstrap.OpenStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	svc := members.NewService(stores.Members, platformclock.NewSystemClock(), password.NewHasher(cfg.BcryptCost), log)
	svc.DefaultTier = cfg.DefaultMembershipTier
	if *tier != "" {
		svc.DefaultTier = *tier
	}

	m, err := svc.Register(ctx, members.RegisterInput{
		Username: *username,
		Email:    *email,
		Password: plain,
	})
	if err != nil {
		var ae *members.Error
		if errors.As(err, &ae) {
			return describe(ae)
		}
		return err
	}
	_, err = fmt.Fprintf(stdout, "created member %s (%s, %s)\n", m.ID, m.Username, m.Email)
	return err
}

// readPassword returns the first line of r without its line ending.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("password is required on stdin")
	}
	return line, nil
}

func describe(ae *members.Error) error {
	if len(ae.Details) == 0 {
		return errors.New(ae.Message)
	}
	fields := make([]string, 0, len(ae.Details))
	for field := range ae.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s %v", field, ae.Details[field]))
	}
	return fmt.Errorf("%s (%s)", ae.Message, strings.Join(parts, "; "))
}
