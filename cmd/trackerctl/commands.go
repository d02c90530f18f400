package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/noah-isme/academic-tracker/internal/media"
	"github.com/noah-isme/academic-tracker/internal/models"
	"github.com/noah-isme/academic-tracker/internal/repository"
	"github.com/noah-isme/academic-tracker/internal/service"
	"github.com/noah-isme/academic-tracker/pkg/apiclient"
	"github.com/noah-isme/academic-tracker/pkg/export"
)

func (a *app) authService() *service.AuthService {
	return service.NewAuthService(repository.NewAuthRepository(a.client), nil, a.logger)
}

// session resumes the session carried by -token or API_TOKEN.
func (a *app) session(token string) (*models.Session, *apiclient.Client, error) {
	if token == "" {
		token = a.cfg.API.Token
	}
	if token == "" {
		return nil, nil, errors.New("missing token: run `trackerctl login` and pass -token or set API_TOKEN")
	}
	session, err := a.authService().ResumeSession(token)
	if err != nil {
		return nil, nil, err
	}
	return session, a.client.WithCredentials(session), nil
}

func cmdWait(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("wait", flag.ExitOnError)
	timeout := fs.Duration("timeout", 30*time.Second, "give up after this long")
	_ = fs.Parse(args)

	url := strings.TrimSuffix(a.cfg.API.BaseURL, "/") + "/health"
	backoff := retry.WithMaxDuration(*timeout, retry.NewFibonacci(200*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return retry.RetryableError(fmt.Errorf("health check returned %d", resp.StatusCode))
		}
		fmt.Println("api is up")
		return nil
	})
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("staff", "", "staff email (correo)")
	cedula := fs.String("cedula", "", "student cedula")
	password := fs.String("password", "", "password")
	_ = fs.Parse(args)

	auth := a.authService()
	var (
		session *models.Session
		err     error
	)
	switch {
	case *email != "":
		session, err = auth.StaffLogin(ctx, models.StaffLoginRequest{Correo: *email, Password: *password})
	case *cedula != "":
		session, err = auth.StudentLogin(ctx, models.StudentLoginRequest{Cedula: *cedula, Password: *password})
	default:
		return errors.New("pass -staff or -cedula")
	}
	if err != nil {
		return err
	}
	fmt.Println(session.BearerToken())
	return nil
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	cedula := fs.String("cedula", "", "student cedula")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password, at least 6 characters")
	_ = fs.Parse(args)

	session, err := a.authService().Register(ctx, models.RegisterRequest{Cedula: *cedula, Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Println(session.BearerToken())
	return nil
}

func cmdProfile(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	token := fs.String("token", "", "session token")
	_ = fs.Parse(args)

	session, client, err := a.session(*token)
	if err != nil {
		return err
	}
	profiles := service.NewProfileService(repository.NewProfileRepository(client), session, a.logger)
	header := profiles.Header()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Usuario\t%s\n", header.Title)
	fmt.Fprintf(tw, "Correo\t%s\n", header.Email)
	fmt.Fprintf(tw, "Miembro desde\t%s\n", header.MemberSince)
	fmt.Fprintf(tw, "Rol\t%s\n", header.RoleLabel)

	if session.User().Role.IsStaff() {
		profile, err := profiles.StaffProfile(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "Nombre\t%s %s\n", profile.GivenName, profile.FamilyName)
	} else {
		profile, err := profiles.StudentProfile(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "Nombre\t%s %s\n", profile.GivenName, profile.FamilyName)
		if !profile.BirthDate.IsZero() {
			fmt.Fprintf(tw, "Nacimiento\t%s\n", service.FormatStageDate(profile.BirthDate))
		}
		fmt.Fprintf(tw, "Teléfono\t%s\n", profile.Phone)
		fmt.Fprintf(tw, "Dirección\t%s\n", profile.Address)
	}
	return tw.Flush()
}

func cmdFeed(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	token := fs.String("token", "", "session token")
	pages := fs.Int("pages", 1, "number of pages to load")
	_ = fs.Parse(args)

	session, client, err := a.session(*token)
	if err != nil {
		return err
	}
	feed := service.NewFeedService(repository.NewPostRepository(client), session, nil, a.metrics, a.logger)
	defer feed.Close()

	if err := feed.Load(ctx); err != nil {
		return err
	}
	for i := 1; i < *pages; i++ {
		loaded, err := feed.LoadMore(ctx)
		if err != nil {
			return err
		}
		if !loaded {
			break
		}
	}

	state := feed.Snapshot()
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPUBLICADO\tTÍTULO")
	for _, post := range state.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", post.ID, service.FormatPublishedDate(post.CreatedAt), post.Title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("\npage %d, more available: %t\n", state.CurrentPage, state.HasMore)
	return nil
}

func cmdPostCreate(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("post-create", flag.ExitOnError)
	token := fs.String("token", "", "session token")
	title := fs.String("title", "", "post title")
	description := fs.String("description", "", "post description")
	image := fs.String("image", "", "path to a jpeg, png or webp image")
	_ = fs.Parse(args)

	session, client, err := a.session(*token)
	if err != nil {
		return err
	}
	feed := service.NewFeedService(repository.NewPostRepository(client), session, nil, a.metrics, a.logger)
	defer feed.Close()

	source := media.ImageSourceFunc(func(ctx context.Context) (media.ImageAsset, error) {
		if *image == "" {
			return media.ImageAsset{}, media.ErrPickCancelled
		}
		data, err := os.ReadFile(*image)
		if err != nil {
			return media.ImageAsset{}, err
		}
		return media.ImageAsset{Name: *image, Data: data}, nil
	})
	if err := feed.CreatePost(ctx, *title, *description, source); err != nil {
		return err
	}
	fmt.Println("post publicado")
	return nil
}

func cmdPostDelete(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("post-delete", flag.ExitOnError)
	token := fs.String("token", "", "session token")
	id := fs.String("id", "", "post id")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	_ = fs.Parse(args)

	session, client, err := a.session(*token)
	if err != nil {
		return err
	}
	feed := service.NewFeedService(repository.NewPostRepository(client), session, nil, a.metrics, a.logger)
	defer feed.Close()

	confirmation, err := feed.RequestPostDeletion(*id)
	if err != nil {
		return err
	}
	return confirmAndRun(ctx, confirmation, *yes, "¿Eliminar el post "+*id+"?", "post eliminado")
}

func (a *app) stageService(token string) (*service.StageService, error) {
	session, client, err := a.session(token)
	if err != nil {
		return nil, err
	}
	return service.NewStageService(
		repository.NewStageRepository(client),
		repository.NewProfessorRepository(client),
		session, a.metrics, a.logger,
	), nil
}

func cmdStages(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("stages", flag.ExitOnError)
	token := fs.String("token", "", "session token")
	candidates := fs.Bool("candidates", false, "also list evaluator candidates")
	_ = fs.Parse(args)

	stages, err := a.stageService(*token)
	if err != nil {
		return err
	}
	if err := stages.Refresh(ctx); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ETAPA\tINICIO\tFIN\tJURADO")
	for _, stage := range stages.Stages() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", stage.Name,
			service.FormatStageDate(stage.StartDate.UTC()),
			service.FormatStageDate(stage.EndDate.UTC()),
			strings.Join(stages.EvaluatorNames(stage), ", "))
	}
	if *candidates {
		fmt.Fprintln(tw, "\nID\tPROFESOR\t\t")
		for _, p := range stages.Candidates() {
			fmt.Fprintf(tw, "%s\t%s\t\t\n", p.ID, p.DisplayName())
		}
	}
	return tw.Flush()
}

func cmdStageCreate(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("stage-create", flag.ExitOnError)
	token := fs.String("token", "", "session token")
	name := fs.String("name", string(models.StageOne), "stage name: etapa 1, etapa 2 or etapa 3")
	start := fs.String("start", "", "start date, DD-MM-YYYY")
	end := fs.String("end", "", "end date, DD-MM-YYYY")
	panel := fs.String("panel", "", "comma separated evaluator ids, up to three")
	_ = fs.Parse(args)

	stages, err := a.stageService(*token)
	if err != nil {
		return err
	}

	var ids []string
	for _, id := range strings.Split(*panel, ",") {
		if id = strings.TrimSpace(id); id == "" {
			continue
		}
		if ids, err = service.ToggleEvaluator(ids, id); err != nil {
			return err
		}
	}

	form := models.StageForm{Name: models.StageName(*name), StartDate: *start, EndDate: *end, Panel: ids}
	if err := stages.SubmitStage(ctx, form); err != nil {
		return err
	}
	fmt.Printf("%s programada (%d etapas en total)\n", *name, len(stages.Stages()))
	return nil
}

func cmdStageDelete(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("stage-delete", flag.ExitOnError)
	token := fs.String("token", "", "session token")
	name := fs.String("name", "", "stage name")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	_ = fs.Parse(args)

	stages, err := a.stageService(*token)
	if err != nil {
		return err
	}
	confirmation, err := stages.RequestStageDeletion(models.StageName(*name))
	if err != nil {
		return err
	}
	return confirmAndRun(ctx, confirmation, *yes, "¿Eliminar "+*name+"? Esta acción no se puede deshacer.", "etapa eliminada")
}

func cmdExport(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	token := fs.String("token", "", "session token")
	rawFormat := fs.String("format", "csv", "csv or pdf")
	out := fs.String("out", "", "output file, stdout when empty")
	_ = fs.Parse(args)

	format, err := export.ParseFormat(*rawFormat)
	if err != nil {
		return err
	}
	stages, err := a.stageService(*token)
	if err != nil {
		return err
	}
	if err := stages.Refresh(ctx); err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return stages.ExportSchedule(w, format)
}

func confirmAndRun(ctx context.Context, confirmation *service.Confirmation, yes bool, prompt, done string) error {
	if !yes {
		fmt.Printf("%s [s/N] ", prompt)
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "s" && a != "si" && a != "sí" {
			confirmation.Cancel()
			fmt.Println("cancelado")
			return nil
		}
	}
	if err := confirmation.Confirm(ctx); err != nil {
		return err
	}
	fmt.Println(done)
	return nil
}
