package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"deck-dash-service/internal/app"
	"deck-dash-service/internal/domain"
	pgstore "deck-dash-service/internal/infra/postgres"
	pgmigrations "deck-dash-service/internal/infra/postgres/migrations"
	infraredis "deck-dash-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun/migrate"
)

func TestImportedDeckPlaysEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedDeck(t, ctx, pgURL, sampleRows())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	log := logrus.New()
	rows := infraredis.NewRowRepository(redisClient, pgstore.NewRowLoader(pool), 5*time.Minute, log)
	decks := app.NewDeckService(rows)
	play := app.NewPlayService(decks, infraredis.NewSessionStore(redisClient, 5*time.Minute))

	topics, err := decks.Topics(ctx)
	if err != nil {
		t.Fatalf("topics: %v", err)
	}
	if len(topics) != 2 || topics[0].ID != "flags" || topics[0].CardCount != 4 {
		t.Fatalf("unexpected topics %+v", topics)
	}
	if n, err := redisClient.Exists(ctx, infraredis.RowsKey).Result(); err != nil || n != 1 {
		t.Fatalf("expected row snapshot cached in redis, got n=%d err=%v", n, err)
	}

	session, err := play.Start(ctx, "flags", 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.Total() != 4 {
		t.Fatalf("expected 4 cards, got %d", session.Total())
	}
	for {
		card, _, ok, err := play.Current(ctx, session.ID())
		if err != nil {
			t.Fatalf("current: %v", err)
		}
		if !ok {
			break
		}
		if len(card.WrongAnswers) != 3 {
			t.Fatalf("card %s: expected 3 wrong answers, got %v", card.ID, card.WrongAnswers)
		}
		if _, err := play.Answer(ctx, session.ID(), domain.AnswerSubmission{CardID: card.ID, Answer: card.CorrectAnswer}); err != nil {
			t.Fatalf("answer: %v", err)
		}
	}

	result, done, err := play.Result(ctx, session.ID())
	if err != nil || !done {
		t.Fatalf("result: done=%v err=%v", done, err)
	}
	if result.Tally.CorrectCount != 4 || result.Percentage != 100 || result.Score.BasePoints != 400 {
		t.Fatalf("unexpected result %+v", result)
	}
	play.End(ctx, session.ID())
}

func TestReimportReplacesTopic(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	seedDeck(t, ctx, pgURL, sampleRows())

	db := pgstore.OpenBun(pgURL)
	defer db.Close()
	res, err := pgstore.NewImporter(db).Import(ctx, [][]string{
		{"topic_id", "topic_name", "card_id", "image_url", "correct_answer"},
		{"flags", "Flags", "f9", "https://img/f9.png", "Japan"},
	}, true)
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	if res.Imported != 1 {
		t.Fatalf("expected 1 imported row, got %+v", res)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	rows, err := pgstore.NewRowLoader(pool).LoadRows(ctx)
	if err != nil {
		t.Fatalf("load rows: %v", err)
	}
	flags := 0
	for _, row := range rows[1:] {
		if row[0] == "flags" {
			flags++
		}
	}
	if flags != 1 || len(rows) != 3 {
		t.Fatalf("expected flags replaced and birds kept, got %v", rows)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "deck", "POSTGRES_PASSWORD": "deckpass", "POSTGRES_DB": "deckdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://deck:deckpass@%s:%s/deckdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedDeck(t *testing.T, ctx context.Context, dsn string, rows [][]string) {
	t.Helper()
	db := pgstore.OpenBun(dsn)
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if _, err := pgstore.NewImporter(db).Import(ctx, rows, false); err != nil {
		t.Fatalf("import rows: %v", err)
	}
}

func sampleRows() [][]string {
	return [][]string{
		{"topic_id", "topic_name", "card_id", "image_url", "correct_answer", "wrong_answer_1", "wrong_answer_2", "wrong_answer_3", "difficulty", "created_at"},
		{"flags", "Flags", "f1", "https://img/f1.png", "France", "", "", "", "easy", "2024-11-22"},
		{"flags", "Flags", "f2", "https://img/f2.png", "Italy", "", "", "", "medium", "2024-11-22"},
		{"flags", "Flags", "f3", "https://img/f3.png", "Peru", "", "", "", "hard", "2024-11-22"},
		{"flags", "Flags", "f4", "https://img/f4.png", "Chad", "", "", "", "", ""},
		{"birds", "Birds", "b1", "https://img/b1.jpg", "Robin", "", "", "", "easy", ""},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
