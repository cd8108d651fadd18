package commands

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"tableflip.dev/shiwake/pkg/remote/mockserver"
)

func addMockAPI(topLevel *cobra.Command) {
	addr := ":8099"

	cmd := &cobra.Command{
		Use:   "mockapi",
		Short: "run an in-memory achievements service",
		Long: "Run a local in-memory stand-in for the achievements service, for development " +
			"and demos. State is lost on exit.",
		Example: `
shiwake mockapi
shiwake mockapi --addr :9000
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := chi.NewRouter()
			r.Use(middleware.Logger)
			r.Mount("/", mockserver.New().Handler())

			fmt.Printf("mock achievements api listening on %s\n", addr)
			return http.ListenAndServe(addr, r)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", addr, "Listen address.")
	topLevel.AddCommand(cmd)
}
