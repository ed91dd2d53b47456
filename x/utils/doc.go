/*
Package utils contains the generic decorators wrapped around every
settlement handler: savepoint isolation, logging and panic recovery.
*/
package utils
