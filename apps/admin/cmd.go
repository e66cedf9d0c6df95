package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *database.AppDB
	usrSvc  user.ServiceInterface
	stdRepo student.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migratedb [COMMAND] - run DB migrations (default: up)")
	fmt.Println("  addteacher -school SCHOOL_ID -name NAME -username USERNAME [-email EMAIL] [-admin] - create a teacher account")
	fmt.Println("  addstudent -school SCHOOL_ID -teacher TEACHER_ID -name NAME [-class CLASS_LABEL] - enroll a student")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addTeacherCmd := flag.NewFlagSet("addteacher", flag.ExitOnError)
	teacherSchool := addTeacherCmd.String("school", "", "The teacher's school id.")
	teacherName := addTeacherCmd.String("name", "", "The teacher's full name.")
	teacherUname := addTeacherCmd.String("username", "", "The teacher's username. The password will be prompted next.")
	teacherEmail := addTeacherCmd.String("email", "", "The teacher's email.")
	teacherAdmin := addTeacherCmd.Bool("admin", false, "Grant admin roles too.")

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ExitOnError)
	studentSchool := addStudentCmd.String("school", "", "The student's school id.")
	studentTeacher := addStudentCmd.String("teacher", "", "The owning teacher's id.")
	studentName := addStudentCmd.String("name", "", "The student's full name.")
	studentClass := addStudentCmd.String("class", "", "The student's class label.")

	switch args[1] {
	case "migratedb":
		return cli.migrate(args[2:])
	case "addteacher":
		if err := addTeacherCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *teacherSchool == "" || *teacherName == "" || *teacherUname == "" {
			addTeacherCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addTeacherCmd.Usage()
			return errHelp
		}
		return cli.addTeacher(*teacherSchool, *teacherName, *teacherUname, *teacherEmail, string(pwd), *teacherAdmin)
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *studentSchool == "" || *studentTeacher == "" || *studentName == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		return cli.addStudent(*studentSchool, *studentTeacher, *studentName, *studentClass)
	default:
		cli.printUsage()
		return errHelp
	}
}
