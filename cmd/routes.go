package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"water-delivery-api/auth"
	"water-delivery-api/handlers"
	"water-delivery-api/routes"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// routesCmd prints the route table without touching the store.
var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		gin.SetMode(gin.ReleaseMode)
		log := logrus.New()
		log.SetOutput(cmd.ErrOrStderr())

		h := &handlers.Handlers{SeedEnabled: true, Log: log}
		r := routes.NewRouter(h, auth.NewTokenService("", 0), log)

		infos := r.Routes()
		sort.Slice(infos, func(i, j int) bool {
			if infos[i].Path != infos[j].Path {
				return infos[i].Path < infos[j].Path
			}
			return infos[i].Method < infos[j].Method
		})

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH")
		fmt.Fprintln(w, "------\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\n", ri.Method, ri.Path)
		}
		return w.Flush()
	},
}
