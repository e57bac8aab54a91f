package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ikkim/bookshelf-backend/config"
	"github.com/ikkim/bookshelf-backend/internal/app/repository"
	"github.com/ikkim/bookshelf-backend/internal/app/service"
	"github.com/ikkim/bookshelf-backend/internal/catalogio"
	"github.com/ikkim/bookshelf-backend/internal/db"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	assumeYes bool

	adminLogin    string
	adminEmail    string
	adminPassword string
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the bookshelf database",
	Long: `Seed the bookshelf database from the command line.

Subcommands:
  catalog  - Import catalog items from an XLSX workbook
  admin    - Create or promote an administrator account`,
	SilenceUsage: true,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog <xlsx_file_path>",
	Short: "Import catalog items from an XLSX workbook",
	Long: `Import catalog items from an XLSX workbook.

The first sheet is read, its first row is a header:
  Title | Author | Publisher | Year | Price | Categories

Missing categories are created by name.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCatalogImport(args[0])
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Create or promote an administrator account",
	Long: `Create an administrator account, or promote an existing login to admin
and reset its password.

Examples:
  seed admin --login root --email root@example.com --password s3cret`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnsureAdmin()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")

	adminCmd.Flags().StringVar(&adminLogin, "login", "", "Administrator login (required)")
	adminCmd.Flags().StringVar(&adminEmail, "email", "", "Administrator email")
	adminCmd.Flags().StringVar(&adminPassword, "password", "", "Administrator password (required)")
	_ = adminCmd.MarkFlagRequired("login")
	_ = adminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(catalogCmd, adminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// connect loads configuration, opens the database and runs migrations.
func connect() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Initialize(logger.Config{
		Level:       logger.DefaultLevel(cfg.Server.Environment),
		Format:      "console",
		EnableColor: true,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		return nil, err
	}
	if err := db.Migrate(db.GetDB()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db.GetDB(), nil
}

func runCatalogImport(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", filePath, err)
	}
	defer file.Close()

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, skipped, err := catalogio.ReadXLSX(file)
	if err != nil {
		return err
	}

	fmt.Printf("Catalog items to import: %d\n", len(rows))
	if len(skipped) > 0 {
		fmt.Printf("Skipped invalid lines: %v\n", skipped)
	}
	if !confirm("Do you want to proceed with the import?") {
		fmt.Println("Import cancelled.")
		return nil
	}

	conn, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	catalogService := service.NewCatalogService(
		conn,
		repository.NewCatalogRepository(conn),
		repository.NewCategoryRepository(conn),
		repository.NewOrderRepository(conn),
		repository.NewReviewRepository(conn),
	)

	imported, err := catalogService.Import(rows)
	if err != nil {
		return fmt.Errorf("failed to import catalog: %w", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total catalog items imported: %d\n", imported)
	return nil
}

func runEnsureAdmin() error {
	conn, err := connect()
	if err != nil {
		return err
	}
	defer db.Close()

	userService := service.NewUserService(
		conn,
		repository.NewUserRepository(conn),
		repository.NewOrderRepository(conn),
		repository.NewReviewRepository(conn),
	)

	user, err := userService.EnsureAdmin(adminLogin, adminEmail, adminPassword)
	if err != nil {
		return fmt.Errorf("failed to ensure admin %q: %w", adminLogin, err)
	}

	fmt.Printf("Administrator ready: id=%d login=%s\n", user.ID, user.Login)
	return nil
}

func confirm(question string) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("%s (yes/no): ", question)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}
