package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/absfs/absfs"
	"github.com/akamensky/argparse"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tokencrypt-go/internal/config"
	"github.com/tokencrypt-go/internal/encryption"
	"github.com/tokencrypt-go/internal/errors"
	"github.com/tokencrypt-go/internal/server"
)

// TokenExt is appended to encrypted files when no output is given
const TokenExt = ".tkn"

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

type codecArgs struct {
	text        *string
	file        *string
	password    *string
	output      *string
	compression *string
}

func addCodecArgs(cmd *argparse.Command, textHelp string) codecArgs {
	return codecArgs{
		text:     cmd.String("t", "text", &argparse.Options{Help: textHelp}),
		file:     cmd.String("f", "file", &argparse.Options{Help: "Input file path"}),
		password: cmd.String("p", "password", &argparse.Options{Required: true, Help: "Password"}),
		output:   cmd.String("o", "output", &argparse.Options{Help: "Output file path"}),
		compression: cmd.Selector("c", "compression", encryption.ListCompressors(), &argparse.Options{
			Default: encryption.CompressionGzip,
			Help:    "Compression suite; only gzip tokens are portable",
		}),
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	parser := argparse.NewParser("tokencrypt", "Password-based text and file encryption into compact base-62 tokens")
	verbose := parser.Flag("v", "verbose", &argparse.Options{Help: "Enable debug logging"})

	versionCmd := parser.NewCommand("version", "display version information")

	encryptCmd := parser.NewCommand("encrypt", "encrypt text or a file into a token")
	enc := addCodecArgs(encryptCmd, "Plaintext to encrypt")
	noVerify := encryptCmd.Flag("", "no-verify", &argparse.Options{Help: "Skip the decrypt self-check for files"})
	encConfig := encryptCmd.String("", "config", &argparse.Options{Help: "Config file path, read for crypto.verify_files"})

	decryptCmd := parser.NewCommand("decrypt", "decrypt a token or token file")
	dec := addCodecArgs(decryptCmd, "Token to decrypt")

	serveCmd := parser.NewCommand("serve", "run the HTTP service")
	configPath := serveCmd.String("", "config", &argparse.Options{Help: "Config file path"})

	if err := parser.Parse(args); err != nil {
		fmt.Fprint(stderr, parser.Usage(err))
		return 2
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}

	switch {
	case versionCmd.Happened():
		fmt.Fprintln(stdout, config.GetVersionInfo())
		return 0
	case encryptCmd.Happened():
		setupLogging(level, "console")
		textGiven := flagGiven(args, "-t", "--text")
		return exitWith(stderr, encryptCommand(enc, textGiven, *noVerify, *encConfig, stdout))
	case decryptCmd.Happened():
		setupLogging(level, "console")
		textGiven := flagGiven(args, "-t", "--text")
		return exitWith(stderr, decryptCommand(dec, textGiven, stdout))
	case serveCmd.Happened():
		return exitWith(stderr, serve(*configPath, *verbose))
	default:
		fmt.Fprint(stderr, parser.Usage("no command specified"))
		return 2
	}
}

// flagGiven reports whether a flag appears in args, so that an explicit
// empty value can be told apart from an absent flag
func flagGiven(args []string, short, long string) bool {
	for _, a := range args[1:] {
		if a == short || a == long || strings.HasPrefix(a, long+"=") {
			return true
		}
	}
	return false
}

func exitWith(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(stderr, "error: %s\n", err)
	return errors.ExitCode(err)
}

func selectInput(a codecArgs, textGiven bool) error {
	fileGiven := *a.file != ""
	if textGiven == fileGiven {
		return errors.NewBadRequest("exactly one of --text or --file is required")
	}
	return nil
}

func encryptCommand(a codecArgs, textGiven, noVerify bool, configPath string, stdout io.Writer) error {
	if err := selectInput(a, textGiven); err != nil {
		return err
	}
	pipeline, err := encryption.NewPipelineForSuite(*a.compression)
	if err != nil {
		return err
	}
	fs, err := hostFS()
	if err != nil {
		return err
	}

	if textGiven {
		token, err := pipeline.EncryptText(*a.text, *a.password)
		if err != nil {
			return err
		}
		return emit(fs, *a.output, []byte(token), stdout)
	}

	out := *a.output
	if out == "" {
		out = *a.file + TokenExt
	}
	verify, err := fileVerify(configPath, noVerify)
	if err != nil {
		return err
	}
	codec := encryption.NewFileCodec(fs, pipeline)
	codec.Verify = verify
	n, err := codec.EncryptFile(*a.file, out, *a.password)
	if err != nil {
		return err
	}
	log.Info().Str("output", out).Int64("bytes", n).Msg("Encrypted file")
	return nil
}

func decryptCommand(a codecArgs, textGiven bool, stdout io.Writer) error {
	if err := selectInput(a, textGiven); err != nil {
		return err
	}
	pipeline, err := encryption.NewPipelineForSuite(*a.compression)
	if err != nil {
		return err
	}
	fs, err := hostFS()
	if err != nil {
		return err
	}

	if textGiven {
		token := strings.TrimSpace(*a.text)
		if *a.output != "" {
			data, err := pipeline.DecryptBytes(token, *a.password)
			if err != nil {
				return err
			}
			return emit(fs, *a.output, data, stdout)
		}
		text, err := pipeline.DecryptText(token, *a.password)
		if err != nil {
			return err
		}
		return emit(fs, "", []byte(text), stdout)
	}

	out := *a.output
	if out == "" {
		out = defaultDecryptOutput(*a.file)
	}
	n, err := encryption.NewFileCodec(fs, pipeline).DecryptFile(*a.file, out, *a.password)
	if err != nil {
		return err
	}
	log.Info().Str("output", out).Int64("bytes", n).Msg("Decrypted file")
	return nil
}

// fileVerify resolves the self-check for file encryption: --no-verify wins,
// otherwise crypto.verify_files decides
func fileVerify(configPath string, noVerify bool) (bool, error) {
	if noVerify {
		return false, nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return false, errors.NewBadRequestWithCause("invalid configuration", err)
	}
	return cfg.Crypto.VerifyFiles, nil
}

func hostFS() (absfs.FileSystem, error) {
	fs, err := encryption.NewOSFileSystem("")
	if err != nil {
		return nil, errors.NewIOError("getwd", ".", err)
	}
	return fs, nil
}

func defaultDecryptOutput(path string) string {
	if strings.HasSuffix(path, TokenExt) && len(path) > len(TokenExt) {
		return strings.TrimSuffix(path, TokenExt)
	}
	return path + ".out"
}

// emit writes data to path, or to stdout followed by a newline when path is empty
func emit(fs absfs.FileSystem, path string, data []byte, stdout io.Writer) error {
	if path == "" {
		_, err := fmt.Fprintf(stdout, "%s\n", data)
		return err
	}
	f, err := fs.Create(path)
	if err != nil {
		return errors.NewIOError("create", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.NewIOError("write", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.NewIOError("close", path, err)
	}
	return nil
}

func serve(configPath string, verbose bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return errors.NewBadRequestWithCause("invalid configuration", err)
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	setupLogging(level, cfg.Log.Format)

	info := config.GetVersionInfo()
	log.Info().Str("version", info.Version).Str("commit", info.GitCommit).Msg("Starting tokencrypt")
	log.Info().
		Str("http_addr", cfg.GetHTTPAddr()).
		Bool("h2c", cfg.IsH2CEnabled()).
		Str("compression", cfg.Crypto.Compression).
		Bool("cache", cfg.Cache.Enable).
		Str("data_dir", cfg.DataDir).
		Msg("Configuration loaded")

	srv, err := server.New(cfg)
	if err != nil {
		return errors.NewInternalWithCause("failed to create server", err)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("Received shutdown signal")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Error during shutdown")
		}
	}()

	if err := srv.Start(); err != nil {
		return errors.NewInternalWithCause("server error", err)
	}
	return nil
}

func setupLogging(level, format string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})
}
