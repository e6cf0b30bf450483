package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/darkkaiser/price-notify/internal/config"
	"github.com/darkkaiser/price-notify/internal/pkg/version"
	applog "github.com/darkkaiser/price-notify/pkg/log"
)

const banner = `
  ____       _                _   _       _   _  __
 |  _ \ _ __(_) ___ ___      | \ | | ___ | |_(_)/ _|_   _
 | |_) | '__| |/ __/ _ \_____|  \| |/ _ \| __| | |_| | | |
 |  __/| |  | | (_|  __/_____| |\  | (_) | |_| |  _| |_| |
 |_|   |_|  |_|\___\___|     |_| \_|\___/ \__|_|_|  \__, |
                                                    |___/ %s
--------------------------------------------------------------------------------
`

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// options 명령줄 인자
type options struct {
	url        string
	chatID     string
	configFile string

	watch   bool
	serve   bool
	dryRun  bool
	debug   bool
	version bool
}

// parseArgs 플래그와 위치 인자(URL)를 순서에 상관없이 받아들입니다.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Kullanım: %s [URL] [seçenekler]\n\n", config.AppName)
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.chatID, "chat", "", "Telegram chat_id (sayısal veya @kanal)")
	fs.StringVar(&opts.configFile, "config", "", "JSON ayar dosyası (varsayılan: "+config.DefaultFilename+", varsa)")
	fs.BoolVar(&opts.watch, "watch", false, "cron zamanlamasına göre sürekli izle")
	fs.BoolVar(&opts.serve, "serve", false, "önizleme HTTP API'sini başlat")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "mesaj göndermeden yalnızca sonucu yazdır")
	fs.BoolVar(&opts.debug, "debug", false, "ayrıntılı günlük kaydı")
	fs.BoolVar(&opts.version, "version", false, "sürüm bilgisini yazdır")

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return options{}, err
		}
		if fs.NArg() == 0 {
			break
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}

	switch len(positional) {
	case 0:
	case 1:
		opts.url = positional[0]
	default:
		return options{}, fmt.Errorf("en fazla bir URL verilebilir: %v", positional)
	}

	return opts, nil
}

// loadConfig 설정을 읽고 명령줄 인자로 덮어쓴 뒤 다시 검증합니다.
func loadConfig(opts options) (*config.AppConfig, error) {
	var (
		appConfig *config.AppConfig
		err       error
	)
	if opts.configFile != "" {
		appConfig, err = config.LoadWithFile(opts.configFile)
	} else {
		appConfig, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.url != "" {
		appConfig.Source.URL = opts.url
	}
	if opts.chatID != "" {
		appConfig.Telegram.ChatID = opts.chatID
	}
	if opts.debug {
		appConfig.Debug = true
	}

	if err := appConfig.Validate(); err != nil {
		return nil, err
	}
	return appConfig, nil
}

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	opts, err := parseArgs(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if opts.version {
		fmt.Println(version.Get().String())
		return exitOK
	}

	// .env는 선택 사항
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "[WARN] .env dosyası okunamadı: %v\n", err)
	}

	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	appConfig, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		return exitError
	}

	// 2. 로그 시스템 초기화
	logOpts := applog.NewProductionOptions(config.AppName)
	if appConfig.Debug {
		logOpts = applog.NewDevelopmentOptions(config.AppName)
	}
	appLogCloser, err := applog.Setup(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패 (Cause: %v)\n", err)
		return exitError
	}
	defer appLogCloser.Close()

	applog.SetDebugMode(appConfig.Debug)

	buildInfo := version.Get()
	applog.WithComponentAndFields("main", applog.Fields{
		"version": buildInfo.String(),
		"mode":    mode(opts),
	}).Info("애플리케이션 초기화 시작")

	for _, w := range appConfig.VerifyRecommendations() {
		applog.WithComponent("main").Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(appConfig, opts.dryRun, os.Stdout, isTerminal(os.Stdout))

	if opts.watch || opts.serve {
		fmt.Printf(banner, buildInfo.Version)
		if err := a.runServices(ctx, opts.watch, opts.serve, buildInfo); err != nil {
			applog.WithComponentAndFields("main", applog.Fields{"error": err}).Error("서비스 초기화 실패")
			fmt.Fprintf(os.Stderr, "Hata: %v\n", err)
			return exitError
		}
		return exitOK
	}

	if err := a.runOnce(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Hata: %v\n", err)
		return exitError
	}
	return exitOK
}

func mode(opts options) string {
	switch {
	case opts.watch && opts.serve:
		return "watch+serve"
	case opts.watch:
		return "watch"
	case opts.serve:
		return "serve"
	default:
		return "once"
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
