package cli

import (
	"context"
	"fmt"
	"log"
	"net"

	"github.com/spf13/cobra"
	grpclib "google.golang.org/grpc"

	"github.com/Ogstevyn/shade/internal/grpc"
	"github.com/Ogstevyn/shade/internal/host"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the shaded daemon and its gRPC admin/query API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	var self host.Address
	rt, err := bootstrap(context.Background(), cfg, self)
	if err != nil {
		return err
	}
	defer rt.Close()

	if !cfg.GRPC.Enabled {
		log.Println("shaded: grpc disabled (grpc.enabled = false); nothing to serve, exiting")
		return nil
	}

	lis, err := net.Listen("tcp", cfg.GRPC.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.GRPC.Listen, err)
	}

	srv := grpclib.NewServer(grpclib.ForceServerCodec(grpc.Codec()))
	grpc.Register(srv, grpc.NewServer(rt.contract, rt.host))

	log.Printf("shaded: serving admin/query API on %s", cfg.GRPC.Listen)
	return srv.Serve(lis)
}
