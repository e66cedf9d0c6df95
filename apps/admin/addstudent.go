package main

import (
	"context"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

// addStudent enrolls a student under a teacher's roster.
func (cli *commandLine) addStudent(schoolID, teacherID, name, classLabel string) error {
	now := time.Now().UTC()
	std, err := cli.stdRepo.CreateStudent(context.Background(), student.Student{
		SchoolID:   core.CleanString(schoolID),
		TeacherID:  core.CleanString(teacherID),
		Name:       core.CleanString(name),
		ClassLabel: core.CleanString(classLabel),
		Level:      1,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return err
	}
	logger.Printf("enrolled student %s (%s)", std.Name, std.ID)
	return nil
}
