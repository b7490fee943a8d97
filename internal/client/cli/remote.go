package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/iudanet/blogapi/internal/client/api"
	"github.com/iudanet/blogapi/internal/server/apperr"
	pkgapi "github.com/iudanet/blogapi/pkg/api"
)

func (c *Cli) runLogin(ctx context.Context, args []string) error {
	var (
		email string
		err   error
	)
	if len(args) > 0 {
		email = args[0]
	} else {
		email, err = c.io.ReadInput("Email: ")
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
	}

	password, err := c.getPassword(false)
	if err != nil {
		return err
	}

	resp, err := c.apiClient.Login(ctx, pkgapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return describe(err)
	}

	c.io.Success("Login successful")
	c.io.Warn("Access token expires in %d seconds", resp.ExpiresIn)
	c.io.Println(resp.Token)
	return nil
}

func (c *Cli) runPosts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("posts", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	categoryID := fs.String("category", "", "category ID")
	tagID := fs.String("tag", "", "tag ID")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("usage: blogctl posts [--category ID] [--tag ID]: %w", err)
	}

	posts, err := c.apiClient.ListPosts(ctx, *categoryID, *tagID)
	if err != nil {
		return describe(err)
	}

	c.printPosts(posts)
	return nil
}

func (c *Cli) runDrafts(ctx context.Context) error {
	token := c.getenv(EnvToken)
	if token == "" {
		return fmt.Errorf("%s is not set, run 'blogctl login' or 'blogctl token <email>' first", EnvToken)
	}

	posts, err := c.apiClient.ListDrafts(ctx, token)
	if err != nil {
		return describe(err)
	}

	c.printPosts(posts)
	return nil
}

func (c *Cli) runHealth(ctx context.Context) error {
	resp, err := c.apiClient.Health(ctx)
	if err != nil {
		return describe(err)
	}

	c.io.Success("Server is %s", resp.Status)
	c.io.Printf("Database: %s\n", resp.Database)
	if resp.Version != "" {
		c.io.Printf("Version:  %s\n", resp.Version)
	}
	return nil
}

func (c *Cli) printPosts(posts []pkgapi.PostResponse) {
	if len(posts) == 0 {
		c.io.Warn("No posts found")
		return
	}

	c.io.Heading(fmt.Sprintf("Posts (%d)", len(posts)))
	for _, p := range posts {
		c.io.Printf("%s  %s\n", p.ID, p.Title)

		tags := make([]string, 0, len(p.Tags))
		for _, t := range p.Tags {
			tags = append(tags, t.Name)
		}
		c.io.Printf("    %s | %s | %s | %d min\n",
			p.Status, p.Author.Name, p.Category.Name, p.ReadingTime)
		if len(tags) > 0 {
			c.io.Printf("    tags: %s\n", strings.Join(tags, ", "))
		}
	}
}

// describe дополняет сообщение ошибками по полям, если они есть
func describe(err error) error {
	var details map[string]string
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		details = apiErr.Details
	} else if appErr, ok := apperr.As(err); ok {
		details = appErr.Details
	}
	if len(details) == 0 {
		return err
	}

	fields := make([]string, 0, len(details))
	for _, field := range slices.Sorted(maps.Keys(details)) {
		fields = append(fields, field+": "+details[field])
	}
	return fmt.Errorf("%w (%s)", err, strings.Join(fields, "; "))
}
