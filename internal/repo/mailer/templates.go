package mailer

import (
	"github.com/aitwy/aitwy-server/pkg/tmplx"
)

const (
	verificationSubject = "Verify Your Email - AITWY"
	welcomeSubject      = "Welcome to AITWY - Your Account is Active!"
)

type verificationData struct {
	Name       string
	URL        string
	ValidHours int
}

type welcomeData struct {
	Name     string
	LoginURL string
}

const layoutStyle = `
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
.content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
.button { display: inline-block; padding: 15px 30px; background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; font-weight: bold; }
.footer { text-align: center; margin-top: 20px; color: #666; font-size: 12px; }
.warning { background: #fff3cd; border-left: 4px solid #ffc107; padding: 15px; margin: 20px 0; }
.feature { background: white; padding: 15px; margin: 10px 0; border-radius: 5px; border-left: 4px solid #667eea; }
`

var (
	verificationHTML = tmplx.MustParse("verification.html", `<!DOCTYPE html>
<html>
<head><style>`+layoutStyle+`</style></head>
<body>
  <div class="container">
    <div class="header"><h1>Welcome to AITWY!</h1></div>
    <div class="content">
      <h2>Hi {{ .Name }},</h2>
      <p>Thank you for signing up! We're excited to have you on board.</p>
      <p>To complete your registration and activate your account, please verify your email address by clicking the button below:</p>
      <div style="text-align: center;">
        <a href="{{ .URL }}" class="button">Verify Email Address</a>
      </div>
      <p>Or copy and paste this link into your browser:</p>
      <p style="background: #fff; padding: 10px; border: 1px solid #ddd; word-break: break-all;">{{ .URL }}</p>
      <div class="warning"><strong>Important:</strong> This verification link will expire in {{ .ValidHours }} hours.</div>
      <p>If you didn't create an account with AITWY, please ignore this email.</p>
      <p>Best regards,<br>The AITWY Team</p>
    </div>
    <div class="footer">
      <p>&copy; {{ year }} AITWY. All rights reserved.</p>
      <p>This is an automated email, please do not reply.</p>
    </div>
  </div>
</body>
</html>
`, tmplx.WithHTML())

	verificationText = tmplx.MustParse("verification.txt", `Hi {{ .Name }},

Thank you for signing up for AITWY!

To complete your registration and activate your account, please verify your email address by clicking the link below:

{{ .URL }}

This verification link will expire in {{ .ValidHours }} hours.

If you didn't create an account with AITWY, please ignore this email.

Best regards,
The AITWY Team
`)

	welcomeHTML = tmplx.MustParse("welcome.html", `<!DOCTYPE html>
<html>
<head><style>`+layoutStyle+`</style></head>
<body>
  <div class="container">
    <div class="header"><h1>Welcome to AITWY!</h1></div>
    <div class="content">
      <h2>Hi {{ .Name }},</h2>
      <p>Your email has been verified and your account is now active!</p>
      <p>You can now access all features of AITWY.</p>
      <div style="text-align: center;">
        <a href="{{ .LoginURL }}" class="button">Login to Your Account</a>
      </div>
      <h3>What's Next?</h3>
      <div class="feature"><strong>Explore Features</strong><br>Discover all the amazing features AITWY has to offer.</div>
      <div class="feature"><strong>Secure Your Account</strong><br>Make sure to use a strong password and keep it safe.</div>
      <div class="feature"><strong>Stay Updated</strong><br>We'll keep you informed about new features and updates.</div>
      <p>If you have any questions, feel free to reach out to our support team.</p>
      <p>Best regards,<br>The AITWY Team</p>
    </div>
    <div class="footer"><p>&copy; {{ year }} AITWY. All rights reserved.</p></div>
  </div>
</body>
</html>
`, tmplx.WithHTML())

	welcomeText = tmplx.MustParse("welcome.txt", `Hi {{ .Name }},

Your email has been verified and your account is now active!

You can now login and access all features of AITWY.

Login here: {{ .LoginURL }}

Best regards,
The AITWY Team
`)
)
