package services

import (
	"context"
	"errors"
	"testing"

	"github.com/classward/test-delivery-service/internal/models"
)

func TestTestPublish_RuleBasedNeedsActiveRule(t *testing.T) {
	env := newTestEnv()
	svc := env.services.Test()

	test := env.seedTest(&models.Test{Title: "exam", Type: models.TestRuleBased, Status: models.TestDraft})

	err := svc.Publish(context.Background(), env.scope, test.ID)
	if !IsValidationError(err) {
		t.Fatalf("Publish() without rules error = %v, want validation error", err)
	}

	env.seedRule(&models.TestRule{
		TestID:            test.ID,
		Name:              "easy",
		NumberOfQuestions: 2,
		SelectionStrategy: models.SelectionRandom,
		SelectionMode:     models.SelectionDynamic,
		IsActive:          true,
	})
	if err := svc.Publish(context.Background(), env.scope, test.ID); err != nil {
		t.Fatalf("Publish() with active rule error = %v", err)
	}
	got, _ := svc.GetByID(context.Background(), env.scope, test.ID)
	if got.Status != models.TestPublished {
		t.Errorf("status = %v, want published", got.Status)
	}
}

func TestTestEdit_GeneratedIsImmutable(t *testing.T) {
	env := newTestEnv()
	svc := env.services.Test()

	gen := env.seedTest(&models.Test{Title: "generated copy", Type: models.TestGenerated})

	title := "renamed"
	if _, err := svc.Update(context.Background(), env.scope, gen.ID, &UpdateTestRequest{Title: &title}); !errors.Is(err, ErrGeneratedNotEditable) {
		t.Errorf("Update() error = %v, want ErrGeneratedNotEditable", err)
	}
	if err := svc.Delete(context.Background(), env.scope, gen.ID); !errors.Is(err, ErrGeneratedNotEditable) {
		t.Errorf("Delete() error = %v, want ErrGeneratedNotEditable", err)
	}
	if err := svc.Publish(context.Background(), env.scope, gen.ID); !errors.Is(err, ErrGeneratedNotEditable) {
		t.Errorf("Publish() error = %v, want ErrGeneratedNotEditable", err)
	}
}

func TestAddRule_Validation(t *testing.T) {
	env := newTestEnv()
	svc := env.services.Test()

	ruleBased := env.seedTest(&models.Test{Title: "exam", Type: models.TestRuleBased, Status: models.TestDraft})
	plain := env.seedTest(&models.Test{Title: "quiz", Type: models.TestPlain, Status: models.TestDraft})

	small := 2
	base := CreateRuleRequest{
		Name:              "easy",
		NumberOfQuestions: 5,
		SelectionStrategy: models.SelectionRandom,
		SelectionMode:     models.SelectionDynamic,
		IsActive:          true,
	}

	t.Run("pool size below selection count", func(t *testing.T) {
		req := base
		req.PoolSize = &small
		if _, err := svc.AddRule(context.Background(), env.scope, ruleBased.ID, &req); !IsValidationError(err) {
			t.Errorf("AddRule() error = %v, want validation error", err)
		}
	})

	t.Run("plain test rejects rules", func(t *testing.T) {
		req := base
		if _, err := svc.AddRule(context.Background(), env.scope, plain.ID, &req); !IsValidationError(err) {
			t.Errorf("AddRule() error = %v, want validation error", err)
		}
	})

	t.Run("valid rule", func(t *testing.T) {
		req := base
		rule, err := svc.AddRule(context.Background(), env.scope, ruleBased.ID, &req)
		if err != nil {
			t.Fatalf("AddRule() error = %v", err)
		}
		if rule.TestID != ruleBased.ID || !rule.IsActive {
			t.Errorf("rule = %+v, want active rule on test %d", rule, ruleBased.ID)
		}
	})
}

func TestUpdateRule_RevalidatesPoolSize(t *testing.T) {
	env := newTestEnv()
	svc := env.services.Test()

	test := env.seedTest(&models.Test{Title: "exam", Type: models.TestRuleBased, Status: models.TestDraft})
	rule := env.seedRule(&models.TestRule{
		TestID:            test.ID,
		Name:              "easy",
		NumberOfQuestions: 3,
		PoolSize:          5,
		SelectionStrategy: models.SelectionRandom,
		SelectionMode:     models.SelectionDynamic,
		IsActive:          true,
	})

	// raising the selection count above the pool size must fail
	bigger := 8
	if _, err := svc.UpdateRule(context.Background(), env.scope, test.ID, rule.ID, &UpdateRuleRequest{NumberOfQuestions: &bigger}); !IsValidationError(err) {
		t.Errorf("UpdateRule() error = %v, want validation error", err)
	}

	smaller := 4
	updated, err := svc.UpdateRule(context.Background(), env.scope, test.ID, rule.ID, &UpdateRuleRequest{NumberOfQuestions: &smaller})
	if err != nil {
		t.Fatalf("UpdateRule() error = %v", err)
	}
	if updated.NumberOfQuestions != 4 {
		t.Errorf("NumberOfQuestions = %d, want 4", updated.NumberOfQuestions)
	}
}

func TestRuleOps_RejectForeignRule(t *testing.T) {
	env := newTestEnv()
	svc := env.services.Test()

	testA := env.seedTest(&models.Test{Title: "a", Type: models.TestRuleBased, Status: models.TestDraft})
	testB := env.seedTest(&models.Test{Title: "b", Type: models.TestRuleBased, Status: models.TestDraft})
	rule := env.seedRule(&models.TestRule{
		TestID:            testB.ID,
		Name:              "easy",
		NumberOfQuestions: 1,
		SelectionStrategy: models.SelectionSequential,
		SelectionMode:     models.SelectionDynamic,
		IsActive:          true,
	})

	if err := svc.RemoveRule(context.Background(), env.scope, testA.ID, rule.ID); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("RemoveRule() error = %v, want ErrRuleNotFound", err)
	}
	if _, err := svc.PreviewRule(context.Background(), env.scope, testA.ID, rule.ID); !errors.Is(err, ErrRuleNotFound) {
		t.Errorf("PreviewRule() error = %v, want ErrRuleNotFound", err)
	}
}

func TestPreviewRule_SurfacesInsufficientPool(t *testing.T) {
	env := newTestEnv()
	svc := env.services.Test()

	env.seedQuestion(singleChoiceQuestion(5, models.DifficultyEasy))
	test := env.seedTest(&models.Test{Title: "exam", Type: models.TestRuleBased, Status: models.TestDraft})
	rule := env.seedRule(&models.TestRule{
		TestID:            test.ID,
		Name:              "easy",
		NumberOfQuestions: 4,
		SelectionStrategy: models.SelectionRandom,
		SelectionMode:     models.SelectionDynamic,
		IsActive:          true,
	})

	_, err := svc.PreviewRule(context.Background(), env.scope, test.ID, rule.ID)
	var poolErr *InsufficientPoolError
	if !errors.As(err, &poolErr) {
		t.Fatalf("PreviewRule() error = %v, want InsufficientPoolError", err)
	}
	if poolErr.Found != 1 || poolErr.Required != 4 {
		t.Errorf("pool error = found %d required %d, want 1/4", poolErr.Found, poolErr.Required)
	}

	// publishing more questions makes the same preview succeed
	for i := 0; i < 3; i++ {
		env.seedQuestion(singleChoiceQuestion(5, models.DifficultyEasy))
	}
	questions, err := svc.PreviewRule(context.Background(), env.scope, test.ID, rule.ID)
	if err != nil {
		t.Fatalf("PreviewRule() after seeding error = %v", err)
	}
	if len(questions) != 4 {
		t.Errorf("len(questions) = %d, want 4", len(questions))
	}
}

func TestAddQuestions_PlainTest(t *testing.T) {
	env := newTestEnv()
	svc := env.services.Test()

	q1 := env.seedQuestion(singleChoiceQuestion(5, models.DifficultyEasy))
	q2 := env.seedQuestion(singleChoiceQuestion(5, models.DifficultyEasy))
	test := env.seedTest(&models.Test{Title: "quiz", Type: models.TestPlain, Status: models.TestDraft})

	err := svc.AddQuestions(context.Background(), env.scope, test.ID, []TestQuestionRequest{
		{QuestionID: q1.ID},
		{QuestionID: q2.ID},
	})
	if err != nil {
		t.Fatalf("AddQuestions() error = %v", err)
	}

	rows, _ := env.repo.TestQuestion().GetByTest(context.Background(), nil, test.ID)
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if rows[0].Ordering != 1 || rows[1].Ordering != 2 {
		t.Errorf("orderings = %d,%d, want 1,2", rows[0].Ordering, rows[1].Ordering)
	}

	if err := svc.AddQuestions(context.Background(), env.scope, test.ID, []TestQuestionRequest{{QuestionID: 9999}}); !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("AddQuestions() with unknown question error = %v, want ErrQuestionNotFound", err)
	}
	if err := svc.RemoveQuestion(context.Background(), env.scope, test.ID, q1.ID); err != nil {
		t.Errorf("RemoveQuestion() error = %v", err)
	}
}

func TestSectionManagement(t *testing.T) {
	env := newTestEnv()
	svc := env.services.Test()

	test := env.seedTest(&models.Test{Title: "quiz", Type: models.TestPlain, Status: models.TestDraft})

	section, err := svc.AddSection(context.Background(), env.scope, test.ID, &CreateSectionRequest{Title: "part one", Ordering: 1})
	if err != nil {
		t.Fatalf("AddSection() error = %v", err)
	}

	if err := svc.RemoveSection(context.Background(), env.scope, test.ID, section.ID+100); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("RemoveSection() with unknown section error = %v, want ErrSectionNotFound", err)
	}
	if err := svc.RemoveSection(context.Background(), env.scope, test.ID, section.ID); err != nil {
		t.Errorf("RemoveSection() error = %v", err)
	}
}
