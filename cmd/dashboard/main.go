package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/bizzyglass/bizzyglass-backend/internal/dashboard"
	"github.com/bizzyglass/bizzyglass-backend/internal/leads"
	"github.com/bizzyglass/bizzyglass-backend/pkg/config"
	"github.com/bizzyglass/bizzyglass-backend/pkg/logger"
	"github.com/bizzyglass/bizzyglass-backend/pkg/security"
)

const (
	serviceName    = "dashboard"
	envOwnerSecret = "BIZZY_DASHBOARD_PASSWORD"
)

type settings struct {
	Dashboard config.DashboardConfig
	Password  config.PasswordConfig
	LogLevel  string `envconfig:"BIZZY_LOG_LEVEL" default:"warn"`
}

func main() {
	apiURL := flag.String("api", "", "API base URL (defaults to BIZZY_DASHBOARD_API_URL)")
	password := flag.String("password", "", "owner password (defaults to "+envOwnerSecret+")")
	search := flag.String("search", "", "search by name, phone, vehicle or lead id")
	status := flag.String("status", "all", "status filter: all|NEW|QUOTED|PAID|COMPLETED|CANCELLED")
	urgency := flag.String("urgency", "all", "urgency filter: all|emergency|urgent|soon|flexible")
	sortKey := flag.String("sort", "newest", "sort: newest|oldest|urgency|status")
	watch := flag.String("watch", "", "poll this lead id and print new messages")
	send := flag.String("send", "", "lead id to send -message to")
	message := flag.String("message", "", "message text for -send")
	pull := flag.Bool("pull", false, "with -watch, load new messages into view as they arrive")
	hashPassword := flag.Bool("hash-password", false, "read a password from stdin and print its argon2id hash")
	flag.Parse()

	_ = godotenv.Load()

	var cfg settings
	if err := envconfig.Process(config.EnvPrefix, &cfg); err != nil {
		fail("parsing config: %v", err)
	}

	if *hashPassword {
		if err := printHash(cfg.Password); err != nil {
			fail("%v", err)
		}
		return
	}

	filter, err := leads.ParseFilter(*search, *status, *urgency, *sortKey)
	if err != nil {
		fail("%v", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Output:      os.Stderr,
	})

	baseURL := cfg.Dashboard.APIBaseURL
	if strings.TrimSpace(*apiURL) != "" {
		baseURL = *apiURL
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	secret := *password
	if secret == "" {
		secret = os.Getenv(envOwnerSecret)
	}

	opts := options{
		password: secret,
		filter:   filter,
		watch:    *watch,
		send:     *send,
		message:  *message,
		pull:     *pull,
	}
	if err := run(ctx, baseURL, cfg.Dashboard, logg, opts); err != nil && !errors.Is(err, context.Canceled) {
		fail("%v", err)
	}
}

type options struct {
	password string
	filter   leads.Filter
	watch    string
	send     string
	message  string
	pull     bool
}

func run(ctx context.Context, baseURL string, cfg config.DashboardConfig, logg *logger.Logger, opts options) error {
	client, err := dashboard.NewClient(baseURL, dashboard.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		return err
	}

	session, err := dashboard.NewSession(dashboard.SessionParams{
		API: client,
		Backoff: dashboard.Backoff{
			Attempts:   cfg.RetryAttempts,
			Initial:    cfg.RetryInitialDelay,
			Multiplier: cfg.RetryMultiplier,
		},
		DemoFallback: cfg.DemoFallback,
		PollInterval: cfg.PollInterval,
		Logger:       logg,
	})
	if err != nil {
		return err
	}

	if err := session.Authenticate(ctx, opts.password); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	source, err := session.Bootstrap(ctx)
	if err != nil {
		return fmt.Errorf("loading leads: %w", err)
	}

	if opts.send != "" {
		session.SetDraft(opts.send, opts.message)
		lead, err := session.SendMessage(ctx, opts.send)
		if err != nil {
			return fmt.Errorf("sending message: %w", err)
		}
		fmt.Fprintf(os.Stdout, "sent to %s (%d messages)\n", lead.ID, len(lead.Messages))
	}

	printDashboard(os.Stdout, session, opts.filter, source)

	if opts.watch == "" {
		return nil
	}
	fmt.Fprintf(os.Stdout, "\nwatching %s, ctrl-c to stop\n", strings.ToUpper(opts.watch))
	return session.Watch(ctx, opts.watch, func(lead leads.LeadDTO, added int) {
		if opts.pull && session.Pull(lead.ID) {
			printNewMessages(os.Stdout, lead, added)
			return
		}
		printUpdateNotice(os.Stdout, lead.ID, added)
	})
}

func printHash(cfg config.PasswordConfig) error {
	fmt.Fprint(os.Stderr, "password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading password: %w", err)
	}
	hash, err := security.HashPassword(strings.TrimRight(line, "\r\n"), cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, hash)
	return nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "dashboard: "+format+"\n", args...)
	os.Exit(1)
}
