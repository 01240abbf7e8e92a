/*
Package contactsdk is the Go client for the contacts service, and the home of
the wire types shared by the server's HTTP layer.

# SDKClient vs Session

SDKClient covers the unauthenticated endpoints (registration, verification,
login, password reset, bootstrap, health). Logging in returns a Session that
carries the access and refresh tokens and transparently rotates them when the
access token is about to expire:

	client := contactsdk.NewSDKClient("http://localhost:8080")

	if _, err := client.Register(ctx, contactsdk.RegisterRequest{
		Email:    "ada@example.com",
		Username: "ada",
		Password: "correct horse battery",
	}); err != nil {
		return err
	}

	// ...follow the emailed link, then:
	session, err := client.Login(ctx, "ada@example.com", "correct horse battery")
	if err != nil {
		return err
	}

	c, err := session.CreateContact(ctx, contactsdk.ContactRequest{
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
		Phone:     "+1 555 0100",
		Birthday:  "1906-12-09",
	})

# Errors

Every non-2xx response is returned as *APIError, whose Code is the
machine-readable "error" field of the body:

	var apiErr *contactsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == contactsdk.ErrorCodeEmailNotVerified {
		// ask the user to check their inbox
	}

Validation failures keep their per-field reasons in APIError.Details.

# Thread Safety

Sessions are safe for concurrent use; token refresh is serialised.
*/
package contactsdk
