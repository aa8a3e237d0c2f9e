// Command quorum runs a deliberation over a set of AI providers, or
// verifies the integrity chain of a persisted session.
//
// Usage:
//
//	quorum run -question "..." [-profile balanced] [-providers claude,gpt]
//	quorum verify -session <id>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"dev.quorum.council/internal/adaptive"
	"dev.quorum.council/internal/budget"
	"dev.quorum.council/internal/config"
	"dev.quorum.council/internal/engine"
	"dev.quorum.council/internal/integrity"
	"dev.quorum.council/internal/provider"
	"dev.quorum.council/internal/store"
	"dev.quorum.council/internal/topology"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(ctx, log, os.Args[2:])
	case "verify":
		err = verifyCmd(log, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.WithError(err).Fatal("command failed")
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: quorum run -question <text> [flags]")
	fmt.Fprintln(os.Stderr, "       quorum verify -session <id> [flags]")
}

func runCmd(ctx context.Context, log *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	question := fs.String("question", "", "question to deliberate")
	profileName := fs.String("profile", "", "deliberation profile (default from config)")
	topologyName := fs.String("topology", "", "override the profile's topology")
	providersFlag := fs.String("providers", "claude,gpt,gemini", "comma-separated provider list")
	configPath := fs.String("config", "quorum.yaml", "configuration file")
	envPath := fs.String("env", ".env", "credential file")
	storeDir := fs.String("store", "sessions", "session store directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *question == "" {
		return fmt.Errorf("run: -question is required")
	}

	if err := config.LoadEnv(*envPath); err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	profile, err := cfg.ProfileByName(*profileName)
	if err != nil {
		return err
	}

	providers := config.AvailableProviders(splitList(*providersFlag))
	if len(providers) == 0 {
		return fmt.Errorf("run: no provider in %q has a credential configured", *providersFlag)
	}

	topoType := profile.Topology
	if *topologyName != "" {
		topoType = topology.Type(*topologyName)
	}
	topoCfg := cfg.Topology
	topoCfg.Rounds = profile.Rounds
	plan, err := topology.Build(topoType, providers, topoCfg)
	if err != nil {
		return fmt.Errorf("run: build plan: %w", err)
	}

	st, err := store.New(*storeDir)
	if err != nil {
		return err
	}

	orch := engine.New(
		provider.NewRegistry(gateways(providers)...),
		budget.NewManager(cfg.Providers),
		st,
		engine.Config{
			VoteMethod: profile.VotingMethod,
			Adaptive:   adaptive.PresetConfig(profile.AdaptivePreset),
			Logger:     log,
		},
	)

	session := engine.NewSession(*question, profile.Name, topoType, providers)
	log.WithFields(logrus.Fields{
		"session":   session.ID,
		"topology":  topoType,
		"providers": providers,
		"profile":   profile.Name,
	}).Info("deliberation starting")

	outcome, err := orch.Run(ctx, session, *plan)
	if err != nil {
		return err
	}

	fmt.Printf("session: %s\n", outcome.Session.ID)
	if outcome.Vote != nil {
		fmt.Printf("vote: %s wins under %s\n", outcome.Vote.Winner, outcome.Vote.Method)
	}
	fmt.Printf("consensus: %.2f  confidence: %.2f\n", outcome.Synthesis.Consensus, outcome.Synthesis.Confidence)
	fmt.Printf("\n%s\n", outcome.Synthesis.Text)
	if outcome.Synthesis.MinorityReport != "" {
		fmt.Printf("\n%s\n", outcome.Synthesis.MinorityReport)
	}
	return nil
}

func verifyCmd(log *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	sessionID := fs.String("session", "", "session id to verify")
	storeDir := fs.String("store", "sessions", "session store directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sessionID == "" {
		return fmt.Errorf("verify: -session is required")
	}

	st, err := store.New(*storeDir)
	if err != nil {
		return err
	}
	entries, err := st.LoadIntegrity(*sessionID)
	if err != nil {
		return err
	}
	phases, err := st.LoadPhases(*sessionID)
	if err != nil {
		return err
	}

	payloads := make([]integrity.Payload, 0, len(phases))
	for _, p := range phases {
		payloads = append(payloads, integrity.Payload{Phase: p.Phase, Value: p})
	}

	res := integrity.Verify(entries, payloads)
	if !res.Valid {
		return fmt.Errorf("verify: session %s is tampered at phase %q: %s (%s)",
			*sessionID, res.FailedPhase, res.Detail, res.Failure)
	}
	log.WithFields(logrus.Fields{
		"session": *sessionID,
		"phases":  len(phases),
	}).Info("integrity chain verified")
	fmt.Printf("session %s: %d phases, chain valid\n", *sessionID, len(phases))
	return nil
}

// gateways builds the provider gateways. The real network clients are
// external collaborators; this binary wires the named providers through
// the environment-configured client factory when present and otherwise
// refuses at call time, which the engine degrades to fallback entries.
func gateways(names []string) []provider.Gateway {
	gws := make([]provider.Gateway, 0, len(names))
	for _, name := range names {
		gws = append(gws, provider.NewBounded(newClient(name), provider.DefaultTimeoutConfig()))
	}
	return gws
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
