package tests

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/plan"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	dummybroadcast "github.com/trezcool/darasa/services/broadcast/dummy"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
	testutil "github.com/trezcool/darasa/tests"
)

var (
	conf *core.Config
	app  Server

	usrRepo  user.Repository
	stdRepo  student.Repository
	planRepo plan.Repository
	itemRepo assignment.Repository
	bus      *dummybroadcast.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func TestMain(m *testing.M) {
	conf = core.NewConfig()
	conf.TestMode = true
	conf.Debug = false
	conf.SecretKey = "secret"
	conf.Server.Timezone = time.UTC

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		fmt.Printf("dummydb.Open(): %v", err)
		os.Exit(1)
	}
	usrRepo = dummydb.NewUserRepository(db)
	stdRepo = dummydb.NewStudentRepository(db)
	planRepo = dummydb.NewPlanRepository(db)
	itemRepo = dummydb.NewItemRepository(db)

	// set up services
	logger := testutil.Logger{}
	bus = dummybroadcast.NewService()
	usrSvc := user.NewService(usrRepo)
	stdSvc := student.NewService(stdRepo)
	itemSvc := assignment.NewService(itemRepo, bus, logger, conf)
	planSvc := plan.NewService(db, planRepo, itemRepo, stdSvc, usrSvc, bus, logger, conf)

	// set up validation
	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	assignment.InitValidators(validate, translator)

	// set up server
	app = NewServer(ServerDeps{
		Conf:          conf,
		Logger:        logger,
		UserSvc:       usrSvc,
		PlanSvc:       planSvc,
		AssignmentSvc: itemSvc,
		Validate:      validate,
		Translator:    translator,
	})

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
