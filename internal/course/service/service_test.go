package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/orbitaagency1ia/miautoescuela/internal/clock"
	"github.com/orbitaagency1ia/miautoescuela/internal/course/domain"
	"github.com/orbitaagency1ia/miautoescuela/internal/course/repository"
	profiledomain "github.com/orbitaagency1ia/miautoescuela/internal/profile/domain"
	profilerepository "github.com/orbitaagency1ia/miautoescuela/internal/profile/repository"
	profileservice "github.com/orbitaagency1ia/miautoescuela/internal/profile/service"
	"github.com/orbitaagency1ia/miautoescuela/pkg/db"
	"go.uber.org/zap"
)

type fixture struct {
	svc      domain.Service
	profiles profiledomain.Service
	clock    *clock.FakeClock
	schoolID snowflake.ID
	userID   snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&domain.CourseModule{},
		&domain.Lesson{},
		&domain.LessonProgress{},
		&profiledomain.Profile{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	clk := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	profiles := profileservice.NewService(zap.NewNop(), profilerepository.NewRepository(dbConn), clk)
	svc := NewService(zap.NewNop(), repository.NewRepository(dbConn), profiles, node, clk)

	f := &fixture{
		svc:      svc,
		profiles: profiles,
		clock:    clk,
		schoolID: node.Generate(),
		userID:   node.Generate(),
	}

	if _, err := profiles.Create(context.Background(), profiledomain.CreateRequest{
		UserID:   f.userID,
		FullName: "Lucia Fernandez",
		Email:    "lucia@example.com",
	}); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	return f
}

func (f *fixture) mustCreateModule(t *testing.T, title string) *domain.CourseModule {
	t.Helper()
	module, err := f.svc.CreateModule(context.Background(), f.schoolID, domain.ModuleRequest{Title: title})
	if err != nil {
		t.Fatalf("failed to create module: %v", err)
	}
	return module
}

func (f *fixture) mustCreateLesson(t *testing.T, moduleID snowflake.ID, title string, points int) *domain.Lesson {
	t.Helper()
	lesson, err := f.svc.CreateLesson(context.Background(), f.schoolID, domain.LessonRequest{
		ModuleID: moduleID,
		Title:    title,
		Points:   points,
	})
	if err != nil {
		t.Fatalf("failed to create lesson: %v", err)
	}
	return lesson
}

func TestCompleteLessonAwardsPointsOnce(t *testing.T) {
	f := newFixture(t)
	module := f.mustCreateModule(t, "Normas de circulacion")
	lesson := f.mustCreateLesson(t, module.ID, "Prioridad de paso", 10)

	first, err := f.svc.CompleteLesson(context.Background(), f.schoolID, lesson.ID, f.userID)
	if err != nil {
		t.Fatalf("failed to complete lesson: %v", err)
	}
	if !first.First {
		t.Fatal("expected first completion")
	}
	if first.PointsAwarded != 10 {
		t.Fatalf("expected 10 points awarded, got %d", first.PointsAwarded)
	}

	second, err := f.svc.CompleteLesson(context.Background(), f.schoolID, lesson.ID, f.userID)
	if err != nil {
		t.Fatalf("failed second completion: %v", err)
	}
	if second.First {
		t.Fatal("expected repeat completion to report First=false")
	}
	if second.PointsAwarded != 0 {
		t.Fatalf("expected no points on repeat, got %d", second.PointsAwarded)
	}

	profile, err := f.profiles.Get(context.Background(), f.userID)
	if err != nil {
		t.Fatalf("failed to load profile: %v", err)
	}
	if profile.ActivityPoints != 10 {
		t.Fatalf("expected 10 activity points, got %d", profile.ActivityPoints)
	}
}

func TestCompleteLessonUnknownLesson(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CompleteLesson(context.Background(), f.schoolID, snowflake.ID(404), f.userID)
	if err != domain.ErrLessonNotFound {
		t.Fatalf("expected ErrLessonNotFound, got %v", err)
	}
}

func TestCompleteLessonWrongSchool(t *testing.T) {
	f := newFixture(t)
	module := f.mustCreateModule(t, "Normas de circulacion")
	lesson := f.mustCreateLesson(t, module.ID, "Prioridad de paso", 5)

	otherSchool := f.schoolID + 1
	_, err := f.svc.CompleteLesson(context.Background(), otherSchool, lesson.ID, f.userID)
	if err != domain.ErrLessonNotFound {
		t.Fatalf("expected ErrLessonNotFound, got %v", err)
	}
}

func TestModuleCompleted(t *testing.T) {
	f := newFixture(t)
	module := f.mustCreateModule(t, "Mecanica basica")
	first := f.mustCreateLesson(t, module.ID, "Niveles y ruedas", 5)
	second := f.mustCreateLesson(t, module.ID, "Luces y frenos", 5)

	done, err := f.svc.ModuleCompleted(context.Background(), f.schoolID, module.ID, f.userID)
	if err != nil {
		t.Fatalf("failed to check module: %v", err)
	}
	if done {
		t.Fatal("expected incomplete module before any completion")
	}

	if _, err := f.svc.CompleteLesson(context.Background(), f.schoolID, first.ID, f.userID); err != nil {
		t.Fatalf("failed to complete lesson: %v", err)
	}

	done, err = f.svc.ModuleCompleted(context.Background(), f.schoolID, module.ID, f.userID)
	if err != nil {
		t.Fatalf("failed to check module: %v", err)
	}
	if done {
		t.Fatal("expected incomplete module with one lesson pending")
	}

	if _, err := f.svc.CompleteLesson(context.Background(), f.schoolID, second.ID, f.userID); err != nil {
		t.Fatalf("failed to complete lesson: %v", err)
	}

	done, err = f.svc.ModuleCompleted(context.Background(), f.schoolID, module.ID, f.userID)
	if err != nil {
		t.Fatalf("failed to check module: %v", err)
	}
	if !done {
		t.Fatal("expected completed module")
	}
}

func TestModuleCompletedEmptyModule(t *testing.T) {
	f := newFixture(t)
	module := f.mustCreateModule(t, "Modulo vacio")

	done, err := f.svc.ModuleCompleted(context.Background(), f.schoolID, module.ID, f.userID)
	if err != nil {
		t.Fatalf("failed to check module: %v", err)
	}
	if done {
		t.Fatal("expected module with no lessons to be incomplete")
	}
}

func TestCreateLessonRequiresModule(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateLesson(context.Background(), f.schoolID, domain.LessonRequest{
		ModuleID: snowflake.ID(404),
		Title:    "Huerfana",
	})
	if err != domain.ErrModuleNotFound {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
}
