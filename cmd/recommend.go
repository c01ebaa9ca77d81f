package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/forkcast/forkcast/internal/model"
)

var (
	recommendInput  string
	recommendLat    float64
	recommendLng    float64
	recommendRadius int
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Run one recommendation from the command line",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := initService()
		if err != nil {
			return err
		}

		req := model.RecommendRequest{
			UserInput:    recommendInput,
			Latitude:     recommendLat,
			Longitude:    recommendLng,
			RadiusMeters: recommendRadius,
		}
		if err := req.ValidateCoords(); err != nil {
			return err
		}
		req.ClampRadius(
			cfg.Recommend.RadiusMinMeters,
			cfg.Recommend.RadiusMaxMeters,
			cfg.Recommend.RadiusDefaultMeters,
		)

		resp, err := svc.Recommend(cmd.Context(), req)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

func init() {
	recommendCmd.Flags().StringVar(&recommendInput, "input", "", "free-text preference, e.g. \"ramen\"")
	recommendCmd.Flags().Float64Var(&recommendLat, "lat", 0, "latitude")
	recommendCmd.Flags().Float64Var(&recommendLng, "lng", 0, "longitude")
	recommendCmd.Flags().IntVar(&recommendRadius, "radius", 0, "search radius in meters (default from config)")
	_ = recommendCmd.MarkFlagRequired("lat")
	_ = recommendCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(recommendCmd)
}
