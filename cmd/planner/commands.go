package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/pkordes/travel-planner/internal/config"
	"github.com/pkordes/travel-planner/internal/handler"
	"github.com/pkordes/travel-planner/internal/middleware"
	"github.com/pkordes/travel-planner/internal/service"
)

func serveCmd(cfg func() config.PlannerConfig) *cobra.Command {
	var shareID string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planner API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cfg(), stderrLogs)
			if err != nil {
				return err
			}
			defer a.Close()

			a.load(cmd.Context(), shareID, cmd.OutOrStdout())

			api := handler.NewPlannerServer(a.ctrl, service.NewExportService(a.ctrl), handler.PlannerOptions{
				BudgetTotal: a.cfg.BudgetTotal,
				Logger:      a.log,
			})
			defer api.Close()

			r := chi.NewRouter()
			r.Use(chimiddleware.RequestID)
			r.Use(chimiddleware.RealIP)
			r.Use(middleware.NewSlogLogger(a.log))
			r.Use(chimiddleware.Recoverer)
			r.Use(middleware.NewCORSHandler(a.cfg.CORSOrigins))
			r.Use(middleware.NewMaxBodySizeHandler(1 << 20))
			api.Register(r)

			srv := &http.Server{
				Addr:         ":" + a.cfg.Port,
				Handler:      r,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				a.log.Info("planner starting", "addr", srv.Addr, "mode", a.ctrl.Mode().String())
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				if err != nil {
					return fmt.Errorf("serve: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.log.Info("shutting down planner")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			a.log.Info("planner stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&shareID, "share", "", "join this shared trip on startup")
	return cmd
}

func showCmd(cfg func() config.PlannerConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the itinerary grouped by day",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cfg(), stderrLogs)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			a.load(cmd.Context(), "", out)
			doc := a.ctrl.Document()

			title := doc.TripTitle
			if title == "" {
				title = "(untitled trip)"
			}
			fmt.Fprintln(out, title)
			if id := a.ctrl.ShareID(); id != "" {
				fmt.Fprintf(out, "Shared as %s\n", id)
			}

			days := service.ItineraryDays(doc)
			if len(days) == 0 {
				fmt.Fprintln(out, "No activities yet.")
				return nil
			}
			for _, d := range days {
				fmt.Fprintf(out, "\n%s  %s\n", d.Label, d.Date)
				for _, act := range d.Activities {
					fmt.Fprintf(out, "  %-5s %s", act.Time, act.Name)
					if act.Location != "" {
						fmt.Fprintf(out, " @ %s", act.Location)
					}
					fmt.Fprintln(out)
				}
			}
			return nil
		},
	}
}

func shareCmd(cfg func() config.PlannerConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "share",
		Short: "Publish the trip to the bin store and print its share id",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cfg(), stderrLogs)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			a.load(cmd.Context(), "", out)
			id, err := a.ctrl.StartCollaboration(cmd.Context())
			if err != nil {
				return fmt.Errorf("share trip: %w", err)
			}
			fmt.Fprintf(out, "Share id: %s\n", id)
			return nil
		},
	}
}

func leaveCmd(cfg func() config.PlannerConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Stop collaborating and keep the trip local",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cfg(), stderrLogs)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			a.load(cmd.Context(), "", out)
			a.ctrl.StopCollaboration(cmd.Context())
			// The join above may have failed and left the id remembered.
			if err := a.local.ForgetShareID(cmd.Context()); err != nil {
				return fmt.Errorf("forget share id: %w", err)
			}
			fmt.Fprintln(out, "Collaboration stopped; the trip is local only.")
			return nil
		},
	}
}
