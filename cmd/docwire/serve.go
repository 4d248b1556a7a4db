package main

import (
	"github.com/danmuck/docwire/internal/observability"
	"github.com/danmuck/docwire/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOpts) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve schema listing and decode endpoints over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			observability.InitLogger("docwire", nil, root.cfg.LogLevel())
			gin.SetMode(gin.ReleaseMode)
			reg, err := root.registry()
			if err != nil {
				return err
			}
			cfg := root.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			srv := server.Appear(cfg, reg)
			log.Info().Str("addr", srv.Addr).Msg("docwire started")
			return srv.Serve()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
