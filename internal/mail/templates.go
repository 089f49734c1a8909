package mail

import "fmt"

const (
	SubjectWelcome         = "Bienvenue sur MoneyWise !"
	SubjectPasswordReset   = "Réinitialisation de votre mot de passe - MoneyWise"
	SubjectPasswordChanged = "Votre mot de passe a été modifié - MoneyWise"
)

func WelcomeBody(userName string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Bienvenue sur MoneyWise, %s !</h2>
  <p>Votre compte a été créé avec succès. Vous pouvez dès maintenant enregistrer vos
  transactions, définir des budgets par catégorie et suivre vos dépenses.</p>
  <p>À bientôt,<br>L'équipe MoneyWise</p>
</div>`, userName)
}

func PasswordResetBody(resetLink string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Réinitialisation de votre mot de passe</h2>
  <p>Vous avez demandé la réinitialisation de votre mot de passe. Cliquez sur le lien
  ci-dessous pour en choisir un nouveau. Ce lien expire dans une heure.</p>
  <p><a href="%s">Réinitialiser mon mot de passe</a></p>
  <p>Si vous n'êtes pas à l'origine de cette demande, ignorez cet email.</p>
</div>`, resetLink)
}

func PasswordChangedBody(userName string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Mot de passe modifié</h2>
  <p>Bonjour %s,</p>
  <p>Votre mot de passe MoneyWise vient d'être modifié. Si vous n'êtes pas à l'origine
  de ce changement, contactez-nous immédiatement.</p>
</div>`, userName)
}
