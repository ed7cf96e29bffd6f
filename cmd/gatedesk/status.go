package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/zulandar/gatedesk/internal/models"
)

func newStatusCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show queue status from a running Gatedesk server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "base URL of the Gatedesk server")
	return cmd
}

// statusResponse mirrors the GET /api/status payload.
type statusResponse struct {
	SystemActive   bool                 `json:"systemActive"`
	CurrentTime    string               `json:"currentTime"`
	TotalWaiting   int                  `json:"totalWaiting"`
	CurrentDisplay []models.Appointment `json:"currentDisplay"`
}

func runStatus(cmd *cobra.Command, addr string) error {
	resp, err := http.Get(addr + "/api/status")
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status: server returned %s", resp.Status)
	}

	var st statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return fmt.Errorf("status: decode: %w", err)
	}

	out := cmd.OutOrStdout()
	state := "inactive"
	if st.SystemActive {
		state = "active"
	}
	fmt.Fprintf(out, "System %s at %s — %d waiting\n", state, st.CurrentTime, st.TotalWaiting)
	for i, a := range st.CurrentDisplay {
		fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, a.Name, a.LicensePlate)
	}
	return nil
}
