package cli

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/canopy-network/omniroute/app"
	"github.com/canopy-network/omniroute/lib"
	"github.com/canopy-network/omniroute/store"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SoftwareVersion is the version printed by the version command
const SoftwareVersion = "v0.1.0"

var rootCmd = &cobra.Command{
	Use:   "omniroute",
	Short: "the omniroute multi-hop trade router",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config = InitializeDataDirectory(DataDir, lib.NewDefaultLogger())
		l = lib.NewLogger(lib.LoggerConfig{Level: config.GetLogLevel()}, config.DataDirPath)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(SoftwareVersion)
	},
}

var (
	config, l = lib.Config{}, lib.LoggerI(nil)
	DataDir   = ""
)

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(txCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(autoCompleteCmd)
	rootCmd.PersistentFlags().StringVar(&DataDir, "data-dir", lib.DefaultDataDirPath(), "custom data directory location")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "commit the genesis file in the data directory as the first block",
	Run: func(cmd *cobra.Command, args []string) {
		a, closeDB := loadApp(nil)
		defer closeDB()
		if a.Initialized() {
			writeToConsole(nil, fmt.Errorf("state already initialized at height %d", a.Height()))
			return
		}
		genesis, err := app.ReadGenesisFromFile(config.DataDirPath)
		if err != nil {
			writeToConsole(nil, err)
			return
		}
		if err = a.InitGenesis(genesis); err != nil {
			writeToConsole(nil, err)
			return
		}
		writeToConsole(a.Height(), nil)
	},
}

// InitializeDataDirectory() populates the data directory with configuration and genesis files if missing
func InitializeDataDirectory(dataDirPath string, log lib.LoggerI) (c lib.Config) {
	// make the data dir if missing
	if err := os.MkdirAll(dataDirPath, os.ModePerm); err != nil {
		log.Fatal(err.Error())
	}
	// make the config.json file if missing
	if !lib.FileExists(dataDirPath, lib.ConfigFilePath) {
		log.Infof("Creating %s file", lib.ConfigFilePath)
		def := lib.DefaultConfig()
		def.DataDirPath = dataDirPath
		if err := def.WriteToFile(dataDirPath); err != nil {
			log.Fatal(err.Error())
		}
	}
	// create the genesis file if missing
	if !lib.FileExists(dataDirPath, lib.GenesisFilePath) {
		log.Infof("Creating %s file", lib.GenesisFilePath)
		if err := app.DefaultGenesis().WriteToFile(dataDirPath); err != nil {
			log.Fatal(err.Error())
		}
	}
	// load the config object
	c, err := lib.NewConfigFromFile(dataDirPath)
	if err != nil {
		log.Fatal(err.Error())
	}
	return
}

// loadApp() opens the database in the data directory and creates the application over it
func loadApp(metrics *lib.Metrics) (*app.App, func()) {
	db, err := store.New(config, l)
	if err != nil {
		l.Fatal(err.Error())
	}
	a, err := app.New(config, db, metrics, l)
	if err != nil {
		l.Fatal(err.Error())
	}
	return a, func() {
		if e := db.Close(); e != nil {
			l.Error(e.Error())
		}
	}
}

// loadInitializedApp() is loadApp() that exits if genesis hasn't been committed
func loadInitializedApp(metrics *lib.Metrics) (*app.App, func()) {
	a, closeDB := loadApp(metrics)
	if !a.Initialized() {
		closeDB()
		l.Fatal("state not initialized, run `omniroute init` first")
	}
	return a, closeDB
}

func writeToConsole(a any, err error) {
	if err != nil {
		l.Fatal(err.Error())
	}
	switch a.(type) {
	case int, uint32, uint64:
		p := message.NewPrinter(language.English)
		if _, err := p.Printf("%d\n", a); err != nil {
			l.Fatal(err.Error())
		}
	case string, *string:
		fmt.Println(a)
	default:
		s, err := lib.MarshalJSONIndentString(a)
		if err != nil {
			l.Fatal(err.Error())
		}
		fmt.Println(s)
	}
}

// AUTO COMPLETE CODE BELOW

var autoCompleteCmd = &cobra.Command{
	Use:     "auto-complete <bash|zsh>",
	Short:   "print the shell completion script, e.g. omniroute auto-complete zsh > ~/.zsh/completions/_omniroute",
	Example: "auto-complete bash > ~/.omniroute-completion.sh",
	Run: func(cmd *cobra.Command, args []string) {
		shell := detectShell()
		if len(args) != 0 {
			shell = args[0]
		}
		switch shell {
		case "bash":
			writeToConsole(nil, rootCmd.GenBashCompletion(os.Stdout))
		case "zsh":
			writeToConsole(nil, rootCmd.GenZshCompletion(os.Stdout))
		default:
			writeToConsole(nil, errors.New("unsupported shell (only zsh or bash is supported)"))
		}
	},
}

// detectShell() guesses the shell from $SHELL
func detectShell() string {
	switch shell := os.Getenv("SHELL"); {
	case strings.HasSuffix(shell, "bash"):
		return "bash"
	case strings.HasSuffix(shell, "zsh"):
		return "zsh"
	}
	return ""
}
