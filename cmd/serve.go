package cmd

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"apiprovider.GO/config"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		config.LoadAppConfig()
		config.InitRedis()
		store, usingRedis := config.NewCacheStore()
		if usingRedis {
			log.Println("Redis connection successful, caching responses in Redis.")
		} else {
			log.Println("Redis not configured or not reachable, caching in memory.")
		}

		db, err := config.NewDB()
		if err != nil {
			return fmt.Errorf("failed to connect to DB: %w", err)
		}
		sqldb, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get DB instance: %w", err)
		}
		if err := sqldb.Ping(); err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		log.Println("Database connection successful.")

		app, _, err := NewServer(db, store)
		if err != nil {
			return err
		}
		for _, name := range app.BlueprintNames() {
			log.Println("Mounted API:", name)
		}

		fonts := []string{"banner", "big", "slant", "standard", "small", "doom"}
		figure.NewFigure(config.AppConfig.AppName, fonts[rand.Intn(len(fonts))], true).Print()

		port := servePort
		if port == "" {
			port = config.AppConfig.Port
		}
		log.Printf("Server running on :%s", port)
		return app.Echo.Start(":" + port)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (default $PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}
