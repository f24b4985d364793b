// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// ProbeStatus holds the result of one health probe.
type ProbeStatus struct {
	Probe  string `json:"probe"`
	OK     bool   `json:"ok"`
	Status int    `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	metricsAddr string
	jsonOutput  bool
	timeout     time.Duration
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Probe a running level's health endpoints",
		Long: `Queries the liveness and readiness probes of a fountain run started
with --metrics-addr. Exits non-zero if the run is not ready.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg, &http.Client{Timeout: cfg.timeout})
		},
	}

	cmd.Flags().StringVar(&cfg.metricsAddr, "metrics-addr", "127.0.0.1:9100", "metrics/health HTTP address of the run")
	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", 2*time.Second, "per-probe timeout")

	return cmd
}

func runStatus(cmd *cobra.Command, cfg *statusConfig, client *http.Client) error {
	base := cfg.metricsAddr
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	statuses := []ProbeStatus{
		probe(client, "liveness", base+"/healthz/liveness"),
		probe(client, "readiness", base+"/healthz/readiness"),
	}

	if cfg.jsonOutput {
		data, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		cmd.Println(string(data))
	} else {
		cmd.Print(formatStatusTable(statuses))
	}

	if !statuses[1].OK {
		return oops.Code("NOT_READY").With("addr", cfg.metricsAddr).Errorf("run at %s is not ready", cfg.metricsAddr)
	}
	return nil
}

func probe(client *http.Client, name, url string) ProbeStatus {
	st := ProbeStatus{Probe: name}
	resp, err := client.Get(url)
	if err != nil {
		st.Error = fmt.Sprintf("failed to connect: %v", err)
		return st
	}
	defer func() { _ = resp.Body.Close() }()

	st.Status = resp.StatusCode
	st.OK = resp.StatusCode == http.StatusOK
	return st
}

func formatStatusTable(statuses []ProbeStatus) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "PROBE\tOK\tSTATUS\tERROR")
	for _, st := range statuses {
		code := "-"
		if st.Status != 0 {
			code = fmt.Sprint(st.Status)
		}
		errMsg := st.Error
		if errMsg == "" {
			errMsg = "-"
		}
		_, _ = fmt.Fprintf(w, "%s\t%t\t%s\t%s\n", st.Probe, st.OK, code, errMsg)
	}
	_ = w.Flush()
	return b.String()
}
