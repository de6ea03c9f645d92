// Command assistant runs the ticket booking assistant as an
// interactive terminal conversation.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-ticket-assistant/internal/config"
	"github.com/iliyamo/cinema-ticket-assistant/internal/database"
	"github.com/iliyamo/cinema-ticket-assistant/internal/dialogue"
	"github.com/iliyamo/cinema-ticket-assistant/internal/logger"
	"github.com/iliyamo/cinema-ticket-assistant/internal/nlu"
	"github.com/iliyamo/cinema-ticket-assistant/internal/repository"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env)
	defer logger.Sync()
	log := logger.Get()

	ctx := context.Background()

	db, err := openDatabase(cfg)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
		log.Fatal("migrate schema", zap.Error(err))
	}
	if err := database.Seed(ctx, db); err != nil {
		log.Fatal("seed database", zap.Error(err))
	}

	gemini, err := nlu.NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal("create gemini client", zap.Error(err))
	}
	defer gemini.Close()

	store := repository.NewStore(db)
	engine := dialogue.NewEngine(store, gemini, gemini, log)

	runLoop(ctx, os.Stdin, os.Stdout, engine, log)
}

// turnRunner is the slice of the dialogue engine the loop needs.
type turnRunner interface {
	Turn(ctx context.Context, st *dialogue.State, userText string) ([]string, error)
}

// runLoop drives one terminal conversation over a single dialogue
// state.  A turn error ends the session; the state is half-processed
// at that point and must not carry into another turn.
func runLoop(ctx context.Context, in io.Reader, out io.Writer, eng turnRunner, log *zap.Logger) {
	st := dialogue.NewState()
	fmt.Fprintln(out, "Selamat datang di asisten tiket bioskop! Ketik 'exit' untuk keluar.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Anda: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") {
			fmt.Fprintln(out, "Agen: Sampai jumpa!")
			break
		}

		replies, err := eng.Turn(ctx, st, input)
		if err != nil {
			log.Error("turn failed", zap.Error(err))
			fmt.Fprintln(out, "Agen: Maaf, terjadi kesalahan. Sesi dihentikan.")
			break
		}
		if len(replies) == 0 {
			fmt.Fprintln(out, "Agen: (Tidak ada respons dari agen)")
			continue
		}
		for _, reply := range replies {
			fmt.Fprintln(out, "Agen: "+reply)
		}
	}
}

func openDatabase(cfg config.Config) (*sql.DB, error) {
	if cfg.DBDriver == database.DriverMySQL {
		return database.OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	}
	return database.OpenSQLite()
}
