// Package proposalctl submits and inspects proposals over gRPC.
package proposalctl

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	proposalsv1 "github.com/louisbranch/proposals/api/proposals/v1"
	entrypoint "github.com/louisbranch/proposals/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/proposals/internal/platform/grpc"
	"github.com/louisbranch/proposals/internal/platform/timeouts"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Config holds proposalctl command configuration.
type Config struct {
	Addr       string        `env:"PROPOSALS_ADDR" envDefault:"localhost:8095"`
	Timeout    time.Duration `env:"PROPOSALS_CTL_TIMEOUT" envDefault:"30s"`
	Locale     string        `env:"PROPOSALS_CTL_LOCALE"`
	GetID      string
	Document   string
	Name       string
	Email      string
	Address    string
	Salary     string
	JSONOutput bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = timeouts.GRPCRequest
	}

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "proposals gRPC address (default: PROPOSALS_ADDR or localhost:8095)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall timeout")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "preferred language for error messages (e.g. pt-BR)")
	fs.StringVar(&cfg.GetID, "get", "", "fetch the proposal with this id instead of submitting one")
	fs.StringVar(&cfg.Document, "document", "", "CPF or CNPJ of the applicant")
	fs.StringVar(&cfg.Name, "name", "", "applicant name")
	fs.StringVar(&cfg.Email, "email", "", "applicant email")
	fs.StringVar(&cfg.Address, "address", "", "applicant address")
	fs.StringVar(&cfg.Salary, "salary", "", "applicant salary as a decimal")
	fs.BoolVar(&cfg.JSONOutput, "json", false, "output JSON")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return Config{}, errors.New("-addr is required")
	}
	return cfg, nil
}

// Execute runs one proposalctl request inside the shared telemetry wrapper.
func Execute(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceProposalctl, func(ctx context.Context) error {
		return Run(ctx, cfg, out, errOut)
	})
}

// Run executes one proposalctl request.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	conn, err := platformgrpc.DialWithHealth(ctx, cfg.Addr, timeouts.GRPCDial, nil, platformgrpc.DefaultClientDialOptions()...)
	if err != nil {
		return fmt.Errorf("connect to proposals: %w", err)
	}
	defer conn.Close()
	client := proposalsv1.NewProposalServiceClient(conn)

	if locale := strings.TrimSpace(cfg.Locale); locale != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "accept-language", locale)
	}

	var result any
	if id := strings.TrimSpace(cfg.GetID); id != "" {
		resp, err := client.GetProposal(ctx, &proposalsv1.GetProposalRequest{Id: id})
		if err != nil {
			return reportStatus(errOut, err)
		}
		result = resp.GetProposal()
	} else {
		resp, err := client.CreateProposal(ctx, &proposalsv1.CreateProposalRequest{
			Document: cfg.Document,
			Name:     cfg.Name,
			Email:    cfg.Email,
			Address:  cfg.Address,
			Salary:   cfg.Salary,
		})
		if err != nil {
			return reportStatus(errOut, err)
		}
		result = resp
	}

	if cfg.JSONOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}
	return writeText(out, result)
}

func writeText(out io.Writer, result any) error {
	switch value := result.(type) {
	case *proposalsv1.CreateProposalResponse:
		_, err := fmt.Fprintf(out, "id: %s\ncreated_at: %s\n", value.GetId(), value.GetCreatedAt().AsTime().Format(time.RFC3339))
		return err
	case *proposalsv1.Proposal:
		updated := "-"
		if value.GetUpdatedAt() != nil {
			updated = value.GetUpdatedAt().AsTime().Format(time.RFC3339)
		}
		_, err := fmt.Fprintf(out, "id: %s\ndocument: %s\nname: %s\nemail: %s\naddress: %s\nsalary: %s\nstatus: %s\ncreated_at: %s\nupdated_at: %s\n",
			value.GetId(), value.Document, value.Name, value.Email, value.Address, value.Salary,
			value.GetStatus(), value.GetCreatedAt().AsTime().Format(time.RFC3339), updated)
		return err
	default:
		return fmt.Errorf("unexpected result %T", result)
	}
}

// reportStatus prints the status details to errOut and returns the status as an error.
func reportStatus(errOut io.Writer, err error) error {
	st := status.Convert(err)
	for _, detail := range st.Details() {
		switch d := detail.(type) {
		case *errdetails.BadRequest:
			for _, violation := range d.GetFieldViolations() {
				fmt.Fprintf(errOut, "  %s: %s\n", violation.GetField(), violation.GetDescription())
			}
		case *errdetails.LocalizedMessage:
			fmt.Fprintf(errOut, "%s\n", d.GetMessage())
		}
	}
	return fmt.Errorf("%s: %s", st.Code(), st.Message())
}
