package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"famledger/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type MembershipRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     MembershipRepository
	familyID uuid.UUID
	userID   uuid.UUID
	roleID   uuid.UUID
	context  context.Context
}

func (suite *MembershipRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewMembershipRepo(mock)
	suite.familyID = uuid.New()
	suite.userID = uuid.New()
	suite.roleID = uuid.New()
	suite.context = context.Background()
}

func (suite *MembershipRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestMembershipRepoTestSuite(t *testing.T) {
	suite.Run(t, new(MembershipRepoTestSuite))
}

func (suite *MembershipRepoTestSuite) memberRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "family_id", "user_id", "role_id", "status", "joined_at"})
}

func (suite *MembershipRepoTestSuite) TestCreate_Success() {
	member := &models.FamilyMember{
		ID:       uuid.New(),
		FamilyID: suite.familyID,
		UserID:   suite.userID,
		RoleID:   suite.roleID,
		Status:   models.MemberStatusInvited,
	}

	suite.mock.ExpectExec(`
		INSERT INTO family_members \(id, family_id, user_id, role_id, status, is_deleted, joined_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, FALSE, NOW\(\)\)
	`).WithArgs(member.ID, member.FamilyID, member.UserID, member.RoleID, member.Status).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, member)
	assert.NoError(suite.T(), err)
}

func (suite *MembershipRepoTestSuite) TestGetActive_Success() {
	memberID := uuid.New()
	joinedAt := time.Now().Add(-24 * time.Hour)

	suite.mock.ExpectQuery(`
		SELECT fm.id, fm.family_id, fm.user_id, fm.role_id, fm.status, fm.joined_at
		FROM family_members fm
		JOIN families f ON f.id = fm.family_id
		WHERE fm.family_id = \$1 AND fm.user_id = \$2 AND fm.status = 'active'
		AND fm.is_deleted = FALSE AND f.is_deleted = FALSE
	`).WithArgs(suite.familyID, suite.userID).
		WillReturnRows(suite.memberRows().
			AddRow(memberID, suite.familyID, suite.userID, suite.roleID, models.MemberStatusActive, joinedAt))

	result, err := suite.repo.GetActive(suite.context, suite.familyID, suite.userID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), memberID, result.ID)
	assert.Equal(suite.T(), suite.roleID, result.RoleID)
	assert.Equal(suite.T(), models.MemberStatusActive, result.Status)
}

func (suite *MembershipRepoTestSuite) TestGetActive_NotAMember() {
	suite.mock.ExpectQuery(`
		SELECT fm.id, fm.family_id, fm.user_id, fm.role_id, fm.status, fm.joined_at
		FROM family_members fm
		JOIN families f ON f.id = fm.family_id
		WHERE fm.family_id = \$1 AND fm.user_id = \$2 AND fm.status = 'active'
		AND fm.is_deleted = FALSE AND f.is_deleted = FALSE
	`).WithArgs(suite.familyID, suite.userID).
		WillReturnError(pgx.ErrNoRows)

	result, err := suite.repo.GetActive(suite.context, suite.familyID, suite.userID)
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), result)
}

func (suite *MembershipRepoTestSuite) TestGetDefaultActive_OrdersByMostRecentJoin() {
	newestFamilyID := uuid.New()
	joinedAt := time.Now().Add(-time.Hour)

	suite.mock.ExpectQuery(`
		SELECT fm.id, fm.family_id, fm.user_id, fm.role_id, fm.status, fm.joined_at
		FROM family_members fm
		JOIN families f ON f.id = fm.family_id
		WHERE fm.user_id = \$1 AND fm.status = 'active'
		AND fm.is_deleted = FALSE AND f.is_deleted = FALSE
		ORDER BY fm.joined_at DESC
		LIMIT 1
	`).WithArgs(suite.userID).
		WillReturnRows(suite.memberRows().
			AddRow(uuid.New(), newestFamilyID, suite.userID, suite.roleID, models.MemberStatusActive, joinedAt))

	result, err := suite.repo.GetDefaultActive(suite.context, suite.userID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), newestFamilyID, result.FamilyID)
}

func (suite *MembershipRepoTestSuite) TestGetDefaultActive_NoMemberships() {
	suite.mock.ExpectQuery(`
		SELECT fm.id, fm.family_id, fm.user_id, fm.role_id, fm.status, fm.joined_at
		FROM family_members fm
		JOIN families f ON f.id = fm.family_id
		WHERE fm.user_id = \$1 AND fm.status = 'active'
		AND fm.is_deleted = FALSE AND f.is_deleted = FALSE
		ORDER BY fm.joined_at DESC
		LIMIT 1
	`).WithArgs(suite.userID).
		WillReturnError(pgx.ErrNoRows)

	result, err := suite.repo.GetDefaultActive(suite.context, suite.userID)
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), result)
}

func (suite *MembershipRepoTestSuite) TestListByFamily_Success() {
	first := uuid.New()
	second := uuid.New()
	base := time.Now().Add(-48 * time.Hour)

	rows := suite.memberRows().
		AddRow(first, suite.familyID, uuid.New(), suite.roleID, models.MemberStatusActive, base).
		AddRow(second, suite.familyID, uuid.New(), suite.roleID, models.MemberStatusInvited, base.Add(time.Hour))

	suite.mock.ExpectQuery(`
		SELECT id, family_id, user_id, role_id, status, joined_at
		FROM family_members
		WHERE family_id = \$1 AND is_deleted = FALSE
		ORDER BY joined_at ASC
	`).WithArgs(suite.familyID).
		WillReturnRows(rows)

	result, err := suite.repo.ListByFamily(suite.context, suite.familyID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 2)
	assert.Equal(suite.T(), first, result[0].ID)
	assert.Equal(suite.T(), second, result[1].ID)
}

func (suite *MembershipRepoTestSuite) TestUpdateStatus_Success() {
	memberID := uuid.New()

	suite.mock.ExpectExec(`
		UPDATE family_members
		SET status = \$1
		WHERE id = \$2 AND family_id = \$3 AND is_deleted = FALSE
	`).WithArgs(models.MemberStatusActive, memberID, suite.familyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateStatus(suite.context, suite.familyID, memberID, models.MemberStatusActive)
	assert.NoError(suite.T(), err)
}

func (suite *MembershipRepoTestSuite) TestUpdateStatus_MemberOfAnotherFamily() {
	foreignMemberID := uuid.New()

	suite.mock.ExpectExec(`
		UPDATE family_members
		SET status = \$1
		WHERE id = \$2 AND family_id = \$3 AND is_deleted = FALSE
	`).WithArgs(models.MemberStatusDisabled, foreignMemberID, suite.familyID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.UpdateStatus(suite.context, suite.familyID, foreignMemberID, models.MemberStatusDisabled)
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
}

func (suite *MembershipRepoTestSuite) TestSweepStaleInvites_ReportsCount() {
	cutoff := time.Now().Add(-14 * 24 * time.Hour)

	suite.mock.ExpectExec(`
		UPDATE family_members
		SET is_deleted = TRUE
		WHERE status = 'invited' AND is_deleted = FALSE AND joined_at < \$1
	`).WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	swept, err := suite.repo.SweepStaleInvites(suite.context, cutoff)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), swept)
}

func (suite *MembershipRepoTestSuite) TestSweepStaleInvites_DatabaseError() {
	cutoff := time.Now().Add(-14 * 24 * time.Hour)

	suite.mock.ExpectExec(`
		UPDATE family_members
		SET is_deleted = TRUE
		WHERE status = 'invited' AND is_deleted = FALSE AND joined_at < \$1
	`).WithArgs(cutoff).
		WillReturnError(errors.New("database connection failed"))

	swept, err := suite.repo.SweepStaleInvites(suite.context, cutoff)
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), int64(0), swept)
}
