package postgresql

import (
	"fmt"
	"runtime"

	"limpeja-api/res/store"

	sqlCommenter "github.com/gouyelliot/gorm-sqlcommenter-plugin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type storeImpl struct {
	db *gorm.DB

	authSessionStore    *authSessionStore
	userStore           *userStore
	cleanerProfileStore *cleanerProfileStore
	bookingStore        *bookingStore
	rewardStore         *rewardStore
	withdrawalStore     *withdrawalStore
	settingsStore       *settingsStore
	settlementStore     *settlementStore
}

func (sImpl *storeImpl) AuthSessions() store.AuthSessionStore {
	return sImpl.authSessionStore
}

func (sImpl *storeImpl) Users() store.UserStore {
	return sImpl.userStore
}

func (sImpl *storeImpl) CleanerProfiles() store.CleanerProfileStore {
	return sImpl.cleanerProfileStore
}

func (sImpl *storeImpl) Bookings() store.BookingStore {
	return sImpl.bookingStore
}

func (sImpl *storeImpl) Rewards() store.RewardStore {
	return sImpl.rewardStore
}

func (sImpl *storeImpl) Withdrawals() store.WithdrawalStore {
	return sImpl.withdrawalStore
}

func (sImpl *storeImpl) Settings() store.SettingsStore {
	return sImpl.settingsStore
}

func (sImpl *storeImpl) Settlements() store.SettlementStore {
	return sImpl.settlementStore
}

func (sImpl *storeImpl) GetDB() interface{} {
	return sImpl.db
}

func Connect(connectionUrl string) (*storeImpl, error) {
	db, err := gorm.Open(postgres.Open(connectionUrl), &gorm.Config{TranslateError: true, PrepareStmt: false})
	if err != nil {
		return nil, err
	}

	err = db.Use(sqlCommenter.New())
	if err != nil {
		return nil, err
	}

	err = decorateDBOperationsWithAdditionalInfo(db)
	if err != nil {
		return nil, err
	}

	s := &storeImpl{db: db}

	s.authSessionStore = NewAuthSessionStore(s)
	s.userStore = NewUserStore(s)
	s.cleanerProfileStore = NewCleanerProfileStore(s)
	s.bookingStore = NewBookingStore(s)
	s.rewardStore = NewRewardStore(s)
	s.withdrawalStore = NewWithdrawalStore(s)
	s.settingsStore = NewSettingsStore(s)
	s.settlementStore = NewSettlementStore(s)

	return s, nil
}

// Migrate creates or updates the schema for every entity. Called from the
// server entry point on startup.
func (sImpl *storeImpl) Migrate() error {
	return sImpl.db.AutoMigrate(
		&store.User{},
		&store.AuthSession{},
		&store.PriceSettings{},
		&store.CleanerProfile{},
		&store.Booking{},
		&store.Reward{},
		&store.WithdrawalRequest{},
	)
}

// COMMON UTILITIES

func identifyCallee(stackDepth int) string {
	function, _, line, ok := runtime.Caller(stackDepth)
	if !ok {
		return "<missing-runtime-info>"
	}
	return fmt.Sprintf("%s:%d", runtime.FuncForPC(function).Name(), line)
}

func annotateWithInfoHook(db *gorm.DB) {
	info := identifyCallee(4) // Skip the internal gorm calls & the 2 local setup calls
	db.Clauses(sqlCommenter.NewTag("action", info))
}

func decorateDBOperationsWithAdditionalInfo(db *gorm.DB) error {
	return db.Callback().Query().Before("gorm:query").Register("store::annotate_with_info", annotateWithInfoHook)
}
