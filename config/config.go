package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the global application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Paths     PathsConfig     `mapstructure:"paths"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"`
	Spaceplan SpaceplanConfig `mapstructure:"spaceplan"`
	Google    GoogleConfig    `mapstructure:"google"`
	Mail      MailConfig      `mapstructure:"mail"`
	Database  DatabaseConfig  `mapstructure:"db"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PathsConfig lists the directories searched when resolving input files.
type PathsConfig struct {
	BoatInfoDirs []string `mapstructure:"boatinfo_dirs"`
	ReportDirs   []string `mapstructure:"report_dirs"`
	TemplateDirs []string `mapstructure:"template_dirs"`
	StageDir     string   `mapstructure:"stage_dir"`
	Manifest     string   `mapstructure:"manifest"`
}

// ScheduleConfig holds the per-date report settings. Schedule names may contain
// the placeholder {year}, replaced with the current year at run time.
type ScheduleConfig struct {
	File             string          `mapstructure:"file"`
	Date             string          `mapstructure:"date"`
	OutDir           string          `mapstructure:"outdir"`
	Header           string          `mapstructure:"header"`
	Template         string          `mapstructure:"template"`
	TemplateStartRow int             `mapstructure:"template_start_row"`
	MapFile          string          `mapstructure:"mapfile"`
	FilePrefix       string          `mapstructure:"file_prefix"`
	BoatSchedule     string          `mapstructure:"boat_schedule"`
	WorkSchedule     string          `mapstructure:"work_schedule"`
	ForemanSchedule  string          `mapstructure:"foreman_schedule"`
	RemoveShapes     []string        `mapstructure:"remove_shapes"`
	KeepPhoneZero    bool            `mapstructure:"keep_phone_zero"`
	Columns          ScheduleColumns `mapstructure:"columns"`
	Settings         []SettingColumn `mapstructure:"settings"`
}

// ScheduleColumns names the columns of the operational schedule export.
type ScheduleColumns struct {
	Schedule string `mapstructure:"schedule"`
	Date     string `mapstructure:"date"`
	Time     string `mapstructure:"time"`
	Name     string `mapstructure:"name"`
	MemberID string `mapstructure:"member_id"`
	Phone    string `mapstructure:"phone"`
	Email    string `mapstructure:"email"`
	Spot     string `mapstructure:"spot"`
	Model    string `mapstructure:"model"`
	Comment  string `mapstructure:"comment"`
}

// SettingColumn is one equipment setting column and the label it is printed with.
type SettingColumn struct {
	Label  string `mapstructure:"label"`
	Column string `mapstructure:"column"`
}

// SpaceplanConfig holds the yard map settings.
type SpaceplanConfig struct {
	MapFile        string        `mapstructure:"mapfile"`
	Requests       string        `mapstructure:"requests"`
	Members        string        `mapstructure:"members"`
	OutFile        string        `mapstructure:"outfile"`
	ExMembers      string        `mapstructure:"exmembers"`
	OnLand         string        `mapstructure:"onland"`
	Scheduled      string        `mapstructure:"scheduled"`
	LaunchSchedule string        `mapstructure:"launch_schedule"`
	ColorsFile     string        `mapstructure:"colors_file"`
	NoSpotOption   string        `mapstructure:"no_spot_option"`
	Scale          float64       `mapstructure:"scale"`
	Label          string        `mapstructure:"label"`
	Revision       string        `mapstructure:"revision"`
	Columns        MemberColumns `mapstructure:"columns"`
}

// MemberColumns names the columns of the member, request and on-land tables.
type MemberColumns struct {
	MemberID        string `mapstructure:"member_id"`
	RequestMemberID string `mapstructure:"request_member_id"`
	FirstName       string `mapstructure:"first_name"`
	LastName        string `mapstructure:"last_name"`
	Email           string `mapstructure:"email"`
	Length          string `mapstructure:"length"`
	Width           string `mapstructure:"width"`
	Spot            string `mapstructure:"spot"`
	Model           string `mapstructure:"model"`
	Haulout         string `mapstructure:"haulout"`
	Year            string `mapstructure:"year"`
}

// GoogleConfig holds the Google API settings.
type GoogleConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	TokenFile       string `mapstructure:"token_file"`
	DriverSheetID   string `mapstructure:"driver_sheet_id"`
	ParentFolderID  string `mapstructure:"parent_folder_id"`
}

// MailConfig holds the outgoing mail settings.
type MailConfig struct {
	Sender   string   `mapstructure:"sender"`
	Receiver string   `mapstructure:"receiver"`
	Cc       []string `mapstructure:"cc"`
	Template string   `mapstructure:"template"`
	Subject  string   `mapstructure:"subject"`
	DryRun   bool     `mapstructure:"dry_run"`
}

// DatabaseConfig points at the local sqlite history store.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// legacyEnv maps the environment variables of the old scripts to config keys.
var legacyEnv = map[string]string{
	"schedule.file":           "REPORT_FILE",
	"schedule.date":           "REPORT_DATE",
	"schedule.outdir":         "OUTDIR",
	"schedule.template":       "TEMPLATE",
	"google.driver_sheet_id":  "DRIVERSCHEDULE",
	"google.parent_folder_id": "PARENT_FOLDER_ID",
}

// Load reads configuration from file and environment.
// Precedence: environment > config file > defaults.
func Load(path string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "ESS_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("paths.boatinfo_dirs", []string{"boatinfo"})
	v.SetDefault("paths.report_dirs", []string{"report", ".reports/reports"})
	v.SetDefault("paths.template_dirs", []string{"templates", ".reports/templates"})
	v.SetDefault("paths.stage_dir", "stage")
	v.SetDefault("paths.manifest", "stage/generated_files.json")

	v.SetDefault("schedule.outdir", "stage")
	v.SetDefault("schedule.header", "Schema ESS")
	v.SetDefault("schedule.template_start_row", 5)
	v.SetDefault("schedule.mapfile", "varvskarta*.pptx")
	v.SetDefault("schedule.file_prefix", "Förarschema ESS")
	v.SetDefault("schedule.boat_schedule", "Torrsättning {year}")
	v.SetDefault("schedule.work_schedule", "Arbetspass torrsättning {year}")
	v.SetDefault("schedule.foreman_schedule", "Förmanspass till torrsättning {year} (för styrelsen)")
	v.SetDefault("schedule.remove_shapes", []string{"Anteckning 1", "Anteckning 2", "Anteckning 3"})
	v.SetDefault("schedule.keep_phone_zero", false)
	v.SetDefault("schedule.columns.schedule", "Schema")
	v.SetDefault("schedule.columns.date", "Datum")
	v.SetDefault("schedule.columns.time", "Pass tid")
	v.SetDefault("schedule.columns.name", "Medlem (fullt namn)")
	v.SetDefault("schedule.columns.member_id", "Medlemsnr")
	v.SetDefault("schedule.columns.phone", "Mobil")
	v.SetDefault("schedule.columns.email", "Epost")
	v.SetDefault("schedule.columns.spot", "Plats")
	v.SetDefault("schedule.columns.model", "Modell")
	v.SetDefault("schedule.columns.comment", "Kommentar medlem")
	v.SetDefault("schedule.settings", []map[string]string{
		{"label": "ESK", "column": "inställningESK"},
		{"label": "DUSK1", "column": "inställningDUSK"},
		{"label": "DUSK2", "column": "InställningDUSK2"},
	})

	v.SetDefault("spaceplan.mapfile", "*karta*.pptx")
	v.SetDefault("spaceplan.requests", "Anmälningar*.xlsx")
	v.SetDefault("spaceplan.members", "Alla_medlemmar_inkl_båtinfo_*.xlsx")
	v.SetDefault("spaceplan.outfile", "stage/varvskarta {year}.pptx")
	v.SetDefault("spaceplan.exmembers", "ex-members.txt")
	v.SetDefault("spaceplan.onland", "sommarliggare.xlsx")
	v.SetDefault("spaceplan.scheduled", "torrsättning.xlsx")
	v.SetDefault("spaceplan.launch_schedule", "Sjösättning {year}")
	v.SetDefault("spaceplan.colors_file", "templates/colors.json")
	v.SetDefault("spaceplan.no_spot_option",
		"Jag vill INTE ta upp min båt i år och vill INTE ha nån vinterplats hos ESS")
	v.SetDefault("spaceplan.scale", 5.0)
	v.SetDefault("spaceplan.label", "full")
	v.SetDefault("spaceplan.revision", "1")
	v.SetDefault("spaceplan.columns.member_id", "Medlemsnr")
	v.SetDefault("spaceplan.columns.request_member_id", "Medlemsnummer")
	v.SetDefault("spaceplan.columns.first_name", "Förnamn")
	v.SetDefault("spaceplan.columns.last_name", "Efternamn")
	v.SetDefault("spaceplan.columns.email", "Epost 1")
	v.SetDefault("spaceplan.columns.length", "Längd (båt)")
	v.SetDefault("spaceplan.columns.width", "Bredd")
	v.SetDefault("spaceplan.columns.spot", "Plats")
	v.SetDefault("spaceplan.columns.model", "Modell")
	v.SetDefault("spaceplan.columns.haulout", "Upptagning")
	v.SetDefault("spaceplan.columns.year", "År")

	v.SetDefault("google.credentials_file", "google-credentials.json")
	v.SetDefault("google.token_file", "token.json")

	v.SetDefault("mail.template", "templates/email-template.html")
	v.SetDefault("mail.subject", "Nästa upptagning/ESS - {date}")
	v.SetDefault("mail.dry_run", false)

	v.SetDefault("db.path", "stage/history.db")
}

// Validate checks the settings the pipelines cannot run without.
func (c *Config) Validate() error {
	if c.Spaceplan.Scale <= 0 {
		return fmt.Errorf("config: spaceplan.scale must be positive")
	}
	switch c.Spaceplan.Label {
	case "name", "size", "full":
	default:
		return fmt.Errorf("config: spaceplan.label must be one of name, size, full (got %q)", c.Spaceplan.Label)
	}
	if c.Schedule.TemplateStartRow < 1 {
		return fmt.Errorf("config: schedule.template_start_row must be >= 1")
	}
	for _, s := range c.Schedule.Settings {
		if s.Column == "" {
			return fmt.Errorf("config: schedule.settings entry %q has no column", s.Label)
		}
	}
	return nil
}

// WithYear replaces the {year} placeholder in a configured name.
func WithYear(s string, year int) string {
	return strings.ReplaceAll(s, "{year}", fmt.Sprint(year))
}
