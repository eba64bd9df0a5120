package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/abhisek/fedrill/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz HTTP API",
	Annotations: map[string]string{
		annotationVerbose: "true",
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.cfg.Log.Mode == "production" {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.New(a.svc, a.cfg.Server, a.cfg.Quiz, a.log).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8080)")
}
