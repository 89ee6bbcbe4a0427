// internal/repository/mock_gen.go
package repository

//go:generate mockgen -source=./user.go -destination=../mocks/mock_user_repository.go -package=mocks UserRepositoryIface
//go:generate mockgen -source=./organization.go -destination=../mocks/mock_organization_repository.go -package=mocks OrganizationRepositoryIface
//go:generate mockgen -source=./refresh_token.go -destination=../mocks/mock_refresh_token_repository.go -package=mocks RefreshTokenRepositoryIface
//go:generate mockgen -source=./message.go -destination=../mocks/mock_message_repository.go -package=mocks MessageRepositoryIface
