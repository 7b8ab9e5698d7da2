package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/jrsteele09/go-youtube-uploader/authsession"
	"github.com/jrsteele09/go-youtube-uploader/internal/config"
	"github.com/jrsteele09/go-youtube-uploader/youtube"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage:
  upload channels [-client client_secret.json]
  upload video [-client client_secret.json] [-title t] [-description d] [-category id]
               [-privacy private|unlisted|public] [-tags a,b] [-kids] <file>`

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "channels":
		err = runChannels(ctx, os.Args[2:])
	case "video":
		err = runVideo(ctx, os.Args[2:])
	default:
		fmt.Println(usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}
}

func runChannels(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("channels", flag.ExitOnError)
	clientFile := fs.String("client", "", "OAuth client secret JSON (defaults to CLIENT_SECRET_FILE)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := authorise(ctx, config.New(), *clientFile)
	if err != nil {
		return err
	}
	channels, err := svc.ListChannels(ctx)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		fmt.Println("No channels found for this account")
		return nil
	}
	for _, ch := range channels {
		fmt.Printf("%s  %-40s %d videos\n", ch.ID, ch.Title, ch.VideoCount)
	}
	return nil
}

func runVideo(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("video", flag.ExitOnError)
	clientFile := fs.String("client", "", "OAuth client secret JSON (defaults to CLIENT_SECRET_FILE)")
	title := fs.String("title", "", "video title (defaults to the file name)")
	description := fs.String("description", "", "video description")
	category := fs.String("category", youtube.DefaultCategoryID, "YouTube category id")
	privacy := fs.String("privacy", string(youtube.DefaultPrivacyStatus), "private, unlisted or public")
	tags := fs.String("tags", "", "comma separated tags")
	kids := fs.Bool("kids", false, "the video is made for kids")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("exactly one video file is required")
	}
	path := fs.Arg(0)

	meta, err := videoMetadata(path, *title, *description, *category, *privacy, *tags, *kids)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open video: %w", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat video: %w", err)
	}

	svc, err := authorise(ctx, config.New(), *clientFile)
	if err != nil {
		return err
	}

	fmt.Printf("Uploading %s\n", meta.Title)
	bar := pb.Full.Start64(info.Size())
	result, err := svc.Upload(ctx, file, info.Size(), meta, func(sent, _ int64) {
		bar.SetCurrent(sent)
	})
	bar.Finish()
	if err != nil {
		return err
	}
	fmt.Printf("Upload successful! %s (%s)\n", result.URL, result.PrivacyStatus)
	return nil
}

func videoMetadata(path, title, description, category, privacy, tags string, kids bool) (youtube.VideoMetadata, error) {
	if strings.TrimSpace(title) == "" {
		name := filepath.Base(path)
		title = strings.TrimSuffix(name, filepath.Ext(name))
	}
	categoryID, err := youtube.ParseCategoryID(category)
	if err != nil {
		return youtube.VideoMetadata{}, err
	}
	privacyStatus, err := youtube.ParsePrivacy(privacy)
	if err != nil {
		return youtube.VideoMetadata{}, err
	}
	meta := youtube.VideoMetadata{
		Title:       strings.TrimSpace(title),
		Description: description,
		CategoryID:  categoryID,
		Privacy:     privacyStatus,
		Tags:        youtube.ParseTags(tags),
		MadeForKids: kids,
	}
	return meta, meta.Validate()
}

// authorise runs the paste-the-code flow on the terminal and returns a YouTube
// client for the signed in account.
func authorise(ctx context.Context, c config.Config, clientFile string) (*youtube.Service, error) {
	clientJSON, err := readClientJSON(c, clientFile)
	if err != nil {
		return nil, err
	}

	session := authsession.New(authsession.WithRequestTimeout(c.GetOAuthRequestTimeout()))
	authURL, _, err := session.Begin(clientJSON, authsession.AuthorizationRequest{
		Scopes:     c.GetScopes(),
		AccessType: authsession.AccessType(c.GetAccessType()),
		Prompt:     authsession.Prompt(c.GetPrompt()),
	})
	if err != nil {
		return nil, err
	}

	fmt.Printf("Open this link in your browser and approve access:\n\n  %s\n\n", authURL)
	fmt.Print("Paste the code, or the whole URL you were sent to: ")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 4096), 64*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := session.Complete(ctx, line); err != nil {
			// A malformed paste leaves the flow pending, so the user can try again.
			if errors.Is(err, authsession.ErrCallbackParse) {
				fmt.Printf("%v\nTry again: ", err)
				continue
			}
			return nil, err
		}
		break
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read the authorization code: %w", err)
	}

	client, err := session.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	return youtube.NewService(ctx, client, youtube.WithChunkSize(c.GetUploadChunkSize()))
}

func readClientJSON(c config.Config, clientFile string) ([]byte, error) {
	if clientFile != "" {
		raw, err := os.ReadFile(clientFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read client secret: %w", err)
		}
		return raw, nil
	}
	raw, err := c.GetClientJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to read client secret: %w", err)
	}
	if raw == nil {
		return nil, errors.New("no client secret: pass -client or set CLIENT_SECRET_FILE")
	}
	return raw, nil
}
