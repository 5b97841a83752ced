package main

import (
	"context"
	"fmt"
	"strconv"
)

func (cli *commandLine) classes(ctx context.Context) error {
	if _, err := cli.authenticate(ctx); err != nil {
		return err
	}
	classes, err := cli.svc.ListClasses(ctx, "id,name,year,teacher")
	if err != nil {
		return err
	}

	w := cli.table()
	fmt.Fprintln(w, "ID\tNAME\tYEAR\tTEACHER")
	for _, c := range classes {
		teacher := c.Teacher.Name
		if teacher == "" {
			teacher = strconv.Itoa(c.Teacher.ID)
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", c.ID, c.Name, c.Year, teacher)
	}
	return w.Flush()
}

func (cli *commandLine) students(ctx context.Context, classID int) error {
	if _, err := cli.authenticate(ctx); err != nil {
		return err
	}
	students, err := cli.svc.ListAllStudentsByClass(ctx, classID)
	if err != nil {
		return err
	}

	w := cli.table()
	fmt.Fprintln(w, "ID\tNAME\tREGISTER CODE")
	for _, s := range students {
		fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID, s.Name, s.RegisterCode)
	}
	return w.Flush()
}

func (cli *commandLine) results(ctx context.Context, studentID, assessmentID int) error {
	if _, err := cli.authenticate(ctx); err != nil {
		return err
	}
	res, err := cli.svc.StudentResults(ctx, studentID, assessmentID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "%s, %s\n", res.Student.Name, res.Assessment.Title)
	fmt.Fprintf(cli.out, "answered %d, correct %d, score %.1f%% (%s)\n",
		res.Summary.Answered, res.Summary.Correct, res.Score.Percent, res.PredictedLevel.Label)

	w := cli.table()
	fmt.Fprintln(w, "QUESTION\tMARKED\tCORRECT")
	for _, a := range res.Answers {
		fmt.Fprintf(w, "%d\t%s\t%t\n", a.QuestionID, a.MarkedOption, a.IsCorrect)
	}
	return w.Flush()
}
