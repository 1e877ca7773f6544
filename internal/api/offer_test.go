package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/zaidzaid0342-dotcom/bookhub/internal/api"
	"github.com/zaidzaid0342-dotcom/bookhub/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// submitOffer posts an interest message and returns the created offer
func submitOffer(t *testing.T, r *gin.Engine, bookID uint, token, message string) domain.Offer {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/books/offer/%d", bookID), map[string]string{"message": message}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	var offer domain.Offer
	decodeBody(t, w, &offer)
	return offer
}

// respond sends the seller's decision on an offer
func respond(t *testing.T, r *gin.Engine, offerID uint, token, decision string) int {
	t.Helper()
	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/books/offer/%d", offerID), map[string]string{"status": decision}, token)
	return w.Code
}

func Test_SubmitOffer_StartsPending(t *testing.T) {
	r, db, _ := newTestServer(t)
	seller, _ := createUser(t, db, "seller", false)
	_, buyerToken := createUser(t, db, "buyer", false)
	book := createBook(t, db, seller.ID, "Calculus I", 10, domain.BookAvailable)

	offer := submitOffer(t, r, book.ID, buyerToken, "interested")
	assert.Equal(t, domain.OfferPending, offer.Status)
	assert.Equal(t, book.ID, offer.BookID)
	assert.Equal(t, "interested", offer.Message)

	// Submitting leaves the listing untouched
	var stored domain.Book
	require.NoError(t, db.First(&stored, book.ID).Error)
	assert.Equal(t, domain.BookAvailable, stored.Status)
}

func Test_SubmitOffer_Preconditions(t *testing.T) {
	r, db, _ := newTestServer(t)
	seller, sellerToken := createUser(t, db, "seller", false)
	_, buyerToken := createUser(t, db, "buyer", false)
	book := createBook(t, db, seller.ID, "Calculus I", 10, domain.BookAvailable)
	sold := createBook(t, db, seller.ID, "Sold Book", 10, domain.BookSold)

	// Unknown book
	w := doJSON(t, r, http.MethodPost, "/books/offer/9999", map[string]string{"message": "hi"}, buyerToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Empty message after trimming
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/books/offer/%d", book.ID), map[string]string{"message": "   "}, buyerToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A seller cannot message their own listing
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/books/offer/%d", book.ID), map[string]string{"message": "hi"}, sellerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Sold listings take no further offers
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/books/offer/%d", sold.ID), map[string]string{"message": "hi"}, buyerToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No token
	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/books/offer/%d", book.ID), map[string]string{"message": "hi"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func Test_AcceptOffer_MarksBookSold(t *testing.T) {
	r, db, _ := newTestServer(t)
	seller, sellerToken := createUser(t, db, "seller", false)
	_, buyerToken := createUser(t, db, "buyer", false)
	book := createBook(t, db, seller.ID, "Calculus I", 10, domain.BookAvailable)
	offer := submitOffer(t, r, book.ID, buyerToken, "interested")

	code := respond(t, r, offer.ID, sellerToken, domain.OfferAccepted)
	require.Equal(t, http.StatusOK, code)

	var storedOffer domain.Offer
	require.NoError(t, db.First(&storedOffer, offer.ID).Error)
	assert.Equal(t, domain.OfferAccepted, storedOffer.Status)

	var storedBook domain.Book
	require.NoError(t, db.First(&storedBook, book.ID).Error)
	assert.Equal(t, domain.BookSold, storedBook.Status)
}

func Test_RejectOffer_LeavesBookAvailable(t *testing.T) {
	r, db, _ := newTestServer(t)
	seller, sellerToken := createUser(t, db, "seller", false)
	_, buyerToken := createUser(t, db, "buyer", false)
	book := createBook(t, db, seller.ID, "Calculus I", 10, domain.BookAvailable)
	offer := submitOffer(t, r, book.ID, buyerToken, "interested")

	code := respond(t, r, offer.ID, sellerToken, domain.OfferRejected)
	require.Equal(t, http.StatusOK, code)

	var storedBook domain.Book
	require.NoError(t, db.First(&storedBook, book.ID).Error)
	assert.Equal(t, domain.BookAvailable, storedBook.Status)
}

func Test_RespondToOffer_OnlySeller(t *testing.T) {
	r, db, _ := newTestServer(t)
	seller, _ := createUser(t, db, "seller", false)
	_, buyerToken := createUser(t, db, "buyer", false)
	_, strangerToken := createUser(t, db, "stranger", false)
	book := createBook(t, db, seller.ID, "Calculus I", 10, domain.BookAvailable)
	offer := submitOffer(t, r, book.ID, buyerToken, "interested")

	code := respond(t, r, offer.ID, strangerToken, domain.OfferAccepted)
	assert.Equal(t, http.StatusForbidden, code)

	// The buyer cannot decide their own offer either
	code = respond(t, r, offer.ID, buyerToken, domain.OfferAccepted)
	assert.Equal(t, http.StatusForbidden, code)
}

func Test_RespondToOffer_SecondDecisionConflicts(t *testing.T) {
	r, db, _ := newTestServer(t)
	seller, sellerToken := createUser(t, db, "seller", false)
	_, buyerToken := createUser(t, db, "buyer", false)
	book := createBook(t, db, seller.ID, "Calculus I", 10, domain.BookAvailable)
	offer := submitOffer(t, r, book.ID, buyerToken, "interested")

	code := respond(t, r, offer.ID, sellerToken, domain.OfferAccepted)
	require.Equal(t, http.StatusOK, code)

	// A conflicting second decision must not overwrite the first
	code = respond(t, r, offer.ID, sellerToken, domain.OfferRejected)
	assert.Equal(t, http.StatusConflict, code)

	var stored domain.Offer
	require.NoError(t, db.First(&stored, offer.ID).Error)
	assert.Equal(t, domain.OfferAccepted, stored.Status)
}

func Test_RespondToOffer_InvalidDecision(t *testing.T) {
	r, db, _ := newTestServer(t)
	seller, sellerToken := createUser(t, db, "seller", false)
	_, buyerToken := createUser(t, db, "buyer", false)
	book := createBook(t, db, seller.ID, "Calculus I", 10, domain.BookAvailable)
	offer := submitOffer(t, r, book.ID, buyerToken, "interested")

	code := respond(t, r, offer.ID, sellerToken, "maybe")
	assert.Equal(t, http.StatusBadRequest, code)
}

func Test_ListBookOffers_BuyerContactGatedByAcceptance(t *testing.T) {
	r, db, _ := newTestServer(t)
	seller, sellerToken := createUser(t, db, "seller", false)
	_, buyerToken := createUser(t, db, "buyer", false)
	book := createBook(t, db, seller.ID, "Calculus I", 10, domain.BookAvailable)
	offer := submitOffer(t, r, book.ID, buyerToken, "interested")

	// Pending: identity yes, contact no
	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/books/offers/%d", book.ID), nil, sellerToken)
	require.Equal(t, http.StatusOK, w.Code)
	var offers []api.OfferResponse
	decodeBody(t, w, &offers)
	require.Len(t, offers, 1)
	require.NotNil(t, offers[0].Buyer)
	assert.Equal(t, "buyer", offers[0].Buyer.Handle)
	assert.Empty(t, offers[0].Buyer.Email)
	assert.Empty(t, offers[0].Buyer.Phone)

	// Accepted: contact opens up
	code := respond(t, r, offer.ID, sellerToken, domain.OfferAccepted)
	require.Equal(t, http.StatusOK, code)
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/books/offers/%d", book.ID), nil, sellerToken)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &offers)
	require.Len(t, offers, 1)
	require.NotNil(t, offers[0].Buyer)
	assert.Equal(t, "buyer@example.com", offers[0].Buyer.Email)
	assert.Equal(t, "5551234", offers[0].Buyer.Phone)
}

func Test_ListBookOffers_MissingBuyerResolvesToNull(t *testing.T) {
	r, db, _ := newTestServer(t)
	seller, sellerToken := createUser(t, db, "seller", false)
	buyer, buyerToken := createUser(t, db, "buyer", false)
	book := createBook(t, db, seller.ID, "Calculus I", 10, domain.BookAvailable)
	submitOffer(t, r, book.ID, buyerToken, "interested")
	require.NoError(t, db.Delete(&domain.User{}, buyer.ID).Error)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/books/offers/%d", book.ID), nil, sellerToken)
	require.Equal(t, http.StatusOK, w.Code)
	var offers []api.OfferResponse
	decodeBody(t, w, &offers)
	require.Len(t, offers, 1)
	assert.Nil(t, offers[0].Buyer)
}

func Test_MyOffers_SellerContactGatedByAcceptance(t *testing.T) {
	r, db, _ := newTestServer(t)
	seller, sellerToken := createUser(t, db, "seller", false)
	_, buyerToken := createUser(t, db, "buyer", false)
	book := createBook(t, db, seller.ID, "Calculus I", 10, domain.BookAvailable)
	offer := submitOffer(t, r, book.ID, buyerToken, "interested")

	// Pending: the seller's contact stays hidden from the buyer
	w := doJSON(t, r, http.MethodGet, "/users/offers", nil, buyerToken)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []api.MyOfferResponse
	decodeBody(t, w, &mine)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Book)
	require.NotNil(t, mine[0].Book.Seller)
	assert.Empty(t, mine[0].Book.Seller.Email)
	assert.Empty(t, mine[0].Book.Seller.Phone)

	// Accepted: the buyer now sees how to reach the seller
	code := respond(t, r, offer.ID, sellerToken, domain.OfferAccepted)
	require.Equal(t, http.StatusOK, code)
	w = doJSON(t, r, http.MethodGet, "/users/offers", nil, buyerToken)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &mine)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Book)
	require.NotNil(t, mine[0].Book.Seller)
	assert.Equal(t, "seller@example.com", mine[0].Book.Seller.Email)
	assert.Equal(t, "5551234", mine[0].Book.Seller.Phone)
	assert.Equal(t, domain.BookSold, mine[0].Book.Status)
}

func Test_MyOffers_DeletedBookResolvesToNull(t *testing.T) {
	r, db, _ := newTestServer(t)
	seller, _ := createUser(t, db, "seller", false)
	_, buyerToken := createUser(t, db, "buyer", false)
	book := createBook(t, db, seller.ID, "Calculus I", 10, domain.BookAvailable)
	submitOffer(t, r, book.ID, buyerToken, "interested")
	require.NoError(t, db.Delete(&domain.Book{}, book.ID).Error)

	w := doJSON(t, r, http.MethodGet, "/users/offers", nil, buyerToken)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []api.MyOfferResponse
	decodeBody(t, w, &mine)
	require.Len(t, mine, 1)
	assert.Nil(t, mine[0].Book)
}

func Test_AcceptOffer_SecondPendingOfferStaysDecidable(t *testing.T) {
	r, db, _ := newTestServer(t)
	seller, sellerToken := createUser(t, db, "seller", false)
	_, buyerToken := createUser(t, db, "buyer", false)
	_, otherToken := createUser(t, db, "other", false)
	book := createBook(t, db, seller.ID, "Calculus I", 10, domain.BookAvailable)
	first := submitOffer(t, r, book.ID, buyerToken, "interested")
	second := submitOffer(t, r, book.ID, otherToken, "me too")

	code := respond(t, r, first.ID, sellerToken, domain.OfferAccepted)
	require.Equal(t, http.StatusOK, code)

	// The other pending offer can still be rejected; the book stays sold
	code = respond(t, r, second.ID, sellerToken, domain.OfferRejected)
	require.Equal(t, http.StatusOK, code)
	var storedBook domain.Book
	require.NoError(t, db.First(&storedBook, book.ID).Error)
	assert.Equal(t, domain.BookSold, storedBook.Status)
}
