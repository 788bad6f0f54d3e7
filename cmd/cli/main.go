package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"glaciercare/client"
)

func main() {
	var (
		baseURL   = flag.String("base-url", envOr("GLACIERCARE_URL", "http://localhost:8080"), "analysis API base URL")
		email     = flag.String("email", os.Getenv("GLACIERCARE_EMAIL"), "account email")
		password  = flag.String("password", os.Getenv("GLACIERCARE_PASSWORD"), "account password")
		signup    = flag.Bool("signup", false, "create the account first")
		firstName = flag.String("first-name", "", "first name (signup only)")
		lastName  = flag.String("last-name", "", "last name (signup only)")
		text      = flag.String("text", "", "report text to analyze")
		filePath  = flag.String("file", "", "report file to analyze")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		fatal("email and password are required")
	}
	if *text == "" && *filePath == "" {
		fatal("provide -text or -file")
	}

	ctx := context.Background()

	adapter := client.NewHTTPAuthAdapter(*baseURL, nil)
	sessions := client.NewSessionContext(adapter)
	defer sessions.Close()

	if *signup {
		if err := sessions.Signup(ctx, *firstName, *lastName, *email, *password); err != nil {
			fatal(err.Error())
		}
	} else {
		if err := sessions.Login(ctx, *email, *password); err != nil {
			fatal(err.Error())
		}
	}

	api := client.NewAPIClient(*baseURL, adapter, nil)
	api.OnUnauthorized = func() {
		fmt.Fprintln(os.Stderr, "Session expired. Please sign in again.")
	}

	submitter := client.NewSubmitter(api)

	if *filePath != "" {
		content, err := os.ReadFile(*filePath)
		if err != nil {
			fatal(fmt.Sprintf("read file: %v", err))
		}
		file := client.SelectedFile{
			Name:      filepath.Base(*filePath),
			Size:      int64(len(content)),
			MediaType: mediaTypeFor(*filePath),
			Content:   content,
		}
		if err := submitter.SelectFile(file); err != nil {
			fatal(err.Error())
		}
	} else {
		submitter.SetText(*text)
	}

	result, err := submitter.Submit(ctx)
	if err != nil {
		fatal(err.Error())
	}

	client.Render(os.Stdout, *result)
}

func mediaTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t := mime.TypeByExtension(ext); t != "" {
		if idx := strings.Index(t, ";"); idx >= 0 {
			t = t[:idx]
		}
		return t
	}
	switch ext {
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
