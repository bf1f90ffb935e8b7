package repository

import (
	"errors"
	"testing"

	"gorm.io/gorm"
)

func TestSetAndReadValue(t *testing.T) {
	tester := &tester{
		dbFileName: "./deployment_metadata_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	key := "deployment:argocd:guestbook:previous_version"

	_, err := tester.repo.DeploymentMetadata.SetValue(key, "41")

	if err != nil {
		t.Fatalf("Expected no error after setting value, got %v", err)
	}

	_, err = tester.repo.DeploymentMetadata.SetValue(key, "42")

	if err != nil {
		t.Fatalf("Expected no error after overwriting value, got %v", err)
	}

	md, err := tester.repo.DeploymentMetadata.ReadValue(key)

	if err != nil {
		t.Fatalf("Expected no error after reading value, got %v", err)
	}

	if md.Value != "42" {
		t.Errorf("Expected value 42, got %s", md.Value)
	}
}

func TestReadMissingValue(t *testing.T) {
	tester := &tester{
		dbFileName: "./deployment_metadata_missing_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	_, err := tester.repo.DeploymentMetadata.ReadValue("deployment:argocd:guestbook:status")

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Expected record not found, got %v", err)
	}
}

func TestListValues(t *testing.T) {
	tester := &tester{
		dbFileName: "./deployment_metadata_list_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	for key, value := range map[string]string{
		"deployment:argocd:guestbook:status": "succeeded",
		"deployment:argocd:guestbook:result": "success",
		"deployment:argocd:other:result":     "failed",
	} {
		if _, err := tester.repo.DeploymentMetadata.SetValue(key, value); err != nil {
			t.Fatalf("Expected no error after setting value, got %v", err)
		}
	}

	values, err := tester.repo.DeploymentMetadata.ListValues("deployment:argocd:guestbook:")

	if err != nil {
		t.Fatalf("Expected no error after listing values, got %v", err)
	}

	if len(values) != 2 {
		t.Fatalf("Expected 2 values, got %d", len(values))
	}

	if values[0].Key != "deployment:argocd:guestbook:result" {
		t.Errorf("Expected values ordered by key, got %s first", values[0].Key)
	}
}
