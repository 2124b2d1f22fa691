package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"festive-study/internal/api"
	"festive-study/internal/config"
	"festive-study/internal/data"
)

func (a *app) serveCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srvCfg, err := config.LoadServer()
			if err != nil {
				return err
			}
			if port == "" {
				port = srvCfg.Port
			}
			if srvCfg.Production() {
				gin.SetMode(gin.ReleaseMode)
			}
			gin.DefaultWriter = a.sink.Output

			store := data.NewRunStore(srvCfg.RunTTL, 0)
			defer store.Close()

			router := api.NewRouter(api.Options{
				Config:    a.cfg,
				Store:     store,
				Logger:    a.logger,
				StaticDir: srvCfg.StaticDir,
			})
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return api.Serve(ctx, router, ":"+port, a.logger)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (default: $API_PORT or 8080)")
	return cmd
}
